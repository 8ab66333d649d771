package builder

import (
	"sort"
	"strings"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/pkg/provider"
)

// BoolStyle selects how boolean parameters are rendered.
type BoolStyle int

const (
	// BoolPair renders "--flag true" or "--flag false".
	BoolPair BoolStyle = iota
	// BoolBare renders "--flag" when true and nothing otherwise.
	BoolBare
)

type kind int

const (
	kindString kind = iota
	kindBool
	kindList
)

// flag maps one parameter onto one command-line flag.
type flag struct {
	param string
	name  string
	kind  kind
}

func flagName(param string) string {
	return "--" + strings.ReplaceAll(param, "_", "-")
}

func s(param string) flag { return flag{param: param, name: flagName(param), kind: kindString} }

func b(param string) flag { return flag{param: param, name: flagName(param), kind: kindBool} }

func l(param string) flag { return flag{param: param, name: flagName(param), kind: kindList} }

func (f flag) as(name string) flag {
	f.name = name
	return f
}

func flags(fs ...flag) []flag { return fs }

// command accumulates the tokens of one invocation.
type command struct {
	action string
	params provider.Params
	style  BoolStyle
	tokens []string
}

func (c *command) add(tokens ...string) {
	c.tokens = append(c.tokens, tokens...)
}

// emit appends f when its parameter is set and reports whether it was.
func (c *command) emit(f flag) bool {
	switch f.kind {
	case kindBool:
		v, ok := c.params.Bool(f.param)
		if !ok {
			return false
		}
		if c.style == BoolBare {
			if v {
				c.add(f.name)
			}
			return true
		}
		c.add(f.name, provider.FormatValue(v))
		return true
	default:
		v, ok := c.params.String(f.param)
		if !ok {
			return false
		}
		c.add(f.name, v)
		return true
	}
}

// required emits every flag and fails with all absent parameters named.
func (c *command) required(fs ...flag) error {
	var missing []string
	for _, f := range fs {
		if !c.present(f) {
			missing = append(missing, f.param)
		}
	}
	if len(missing) > 0 {
		return dserrors.MissingParameter(c.action, missing...)
	}
	for _, f := range fs {
		c.emit(f)
	}
	return nil
}

func (c *command) optional(fs ...flag) {
	for _, f := range fs {
		c.emit(f)
	}
}

func (c *command) present(f flag) bool {
	if f.kind == kindBool {
		_, ok := c.params.Bool(f.param)
		return ok
	}
	return c.params.Has(f.param)
}

type buildFunc func(c *command) error

func verbToken(verb string) string {
	return strings.ReplaceAll(verb, "_", "-")
}

// idOnly builds "<resource> <verb> --id <id>" followed by extra required flags.
func idOnly(resource, verb string, extra ...flag) buildFunc {
	return func(c *command) error {
		c.add(resource, verbToken(verb))
		return c.required(append([]flag{s("id")}, extra...)...)
	}
}

// listing builds "<resource> list" with optional filters in table order.
func listing(resource string, filters ...flag) buildFunc {
	return withRequired(resource, "list", nil, filters...)
}

// withRequired emits required flags in order, then optional flags in order.
func withRequired(resource, verb string, required []flag, optional ...flag) buildFunc {
	return func(c *command) error {
		c.add(resource, verbToken(verb))
		if err := c.required(required...); err != nil {
			return err
		}
		c.optional(optional...)
		return nil
	}
}

// jsonFileSpec describes create operations that accept either a JSON file or
// the individual fields.
type jsonFileSpec struct {
	resource string
	jsonFile flag
	tagsFile string
	fields   []flag
	optional []flag
}

func withJSONFile(spec jsonFileSpec) buildFunc {
	return func(c *command) error {
		c.add(spec.resource, "create")
		if c.emit(spec.jsonFile) {
			if spec.tagsFile != "" {
				c.emit(s(spec.tagsFile).as("--tags-jsonfile"))
			}
			return nil
		}
		if err := c.required(spec.fields...); err != nil {
			return err
		}
		c.optional(spec.optional...)
		if spec.tagsFile != "" {
			c.emit(s(spec.tagsFile).as("--tags-jsonfile"))
		}
		return nil
	}
}

// syncJobs returns the synchronization job strategies shared by all providers.
func syncJobs(startFilters ...flag) map[string]buildFunc {
	const resource = "synchronization-jobs"
	return map[string]buildFunc{
		"sync_start":  withRequired(resource, "start", nil, append(startFilters, b("synchronize_all"))...),
		"sync_list":   listing(resource, s("status"), s("skip"), s("limit")),
		"sync_get":    idOnly(resource, "get"),
		"sync_status": withRequired(resource, "status", nil, s("id")),
		"sync_cancel": idOnly(resource, "cancel"),
	}
}

func merge(tables ...map[string]buildFunc) map[string]buildFunc {
	out := make(map[string]buildFunc)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// Builder translates the operations of one provider into ksctl cckm tokens.
type Builder struct {
	provider   provider.Name
	style      BoolStyle
	strategies map[string]buildFunc
}

// Provider returns the provider the builder serves.
func (bd *Builder) Provider() provider.Name {
	return bd.provider
}

// Style returns the provider's boolean rendering convention.
func (bd *Builder) Style() BoolStyle {
	return bd.style
}

// Operations returns the sorted operation names the builder supports.
func (bd *Builder) Operations() []string {
	ops := make([]string, 0, len(bd.strategies))
	for name := range bd.strategies {
		ops = append(ops, name)
	}
	sort.Strings(ops)
	return ops
}

// Build renders operation with flattened params. The result is deterministic:
// flags follow the strategy's fixed order, never map order.
func (bd *Builder) Build(operation string, params provider.Params) (provider.CommandSpec, error) {
	action := string(bd.provider) + "_" + operation
	build, ok := bd.strategies[operation]
	if !ok {
		return nil, dserrors.UnsupportedOperation(action)
	}
	c := &command{
		action: action,
		params: params,
		style:  bd.style,
		tokens: []string{"cckm", string(bd.provider)},
	}
	if err := build(c); err != nil {
		return nil, err
	}
	return provider.CommandSpec(c.tokens), nil
}

// Set holds one builder per provider.
type Set struct {
	builders map[provider.Name]*Builder
}

// NewSet creates the builders of every supported provider.
func NewSet() *Set {
	set := &Set{builders: make(map[provider.Name]*Builder)}
	for _, bd := range []*Builder{newAzure(), newAWS(), newGCP(), newOCI()} {
		set.builders[bd.provider] = bd
	}
	return set
}

// For returns the builder of a provider.
func (st *Set) For(p provider.Name) (*Builder, bool) {
	bd, ok := st.builders[p]
	return bd, ok
}

// Build flattens the action's nested parameter groups and renders the command.
func (st *Set) Build(action provider.Action, params provider.Params) (provider.CommandSpec, error) {
	bd, ok := st.builders[action.Provider]
	if !ok {
		return nil, dserrors.UnsupportedOperation(action.String())
	}
	return bd.Build(action.Operation, params.Flatten(action.GroupKeys()...))
}
