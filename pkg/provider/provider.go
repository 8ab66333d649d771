package provider

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Name identifies a cloud key-management backend managed through CCKM.
//
// The set of names is closed. Each name selects one registry table and one
// command builder.
type Name string

const (
	// Azure is Microsoft Azure Key Vault.
	Azure Name = "azure"
	// AWS is Amazon Web Services KMS.
	AWS Name = "aws"
	// GCP is Google Cloud KMS.
	GCP Name = "gcp"
	// OCI is Oracle Cloud Infrastructure Vault.
	OCI Name = "oci"
)

// All returns every supported provider in a stable order.
func All() []Name {
	return []Name{Azure, AWS, GCP, OCI}
}

// ParseName converts a string into a provider name.
func ParseName(s string) (Name, bool) {
	for _, n := range All() {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (n Name) String() string {
	return string(n)
}

// GroupKey returns the nested parameter object key for the whole provider,
// for example "azure_params".
func (n Name) GroupKey() string {
	return string(n) + "_params"
}

// ResourceGroupKey returns the nested parameter object key for one resource
// group of the provider, for example "azure_keys_params".
func (n Name) ResourceGroupKey(group string) string {
	return string(n) + "_" + group + "_params"
}

// Action is a parsed composite action name.
//
// The wire form is "{provider}_{operation}". Operations are themselves
// "{group}_{verb}", e.g. "azure_keys_soft_delete" has provider "azure",
// operation "keys_soft_delete", group "keys" and verb "soft_delete".
type Action struct {
	Provider  Name
	Operation string
	Group     string
}

// String returns the composite action name.
func (a Action) String() string {
	return string(a.Provider) + "_" + a.Operation
}

// Verb returns the operation with the group prefix removed.
func (a Action) Verb() string {
	return strings.TrimPrefix(a.Operation, a.Group+"_")
}

// GroupKeys returns the nested parameter keys consulted for this action, most
// specific first.
func (a Action) GroupKeys() []string {
	return []string{a.Provider.ResourceGroupKey(a.Group), a.Provider.GroupKey()}
}

// Requirement lists the required and optional parameters of one operation.
//
// Required and Optional are disjoint. Both are subsets of the provider's
// documented descriptors.
type Requirement struct {
	Required []string `json:"required" yaml:"required"`
	Optional []string `json:"optional" yaml:"optional"`
}

// Descriptor documents one parameter in JSON-schema terms.
type Descriptor struct {
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items       string   `json:"items,omitempty" yaml:"items,omitempty"`
}

// Parameter types used in descriptors.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// CommandSpec is the ordered token sequence handed to the executor.
type CommandSpec []string

// Params is the parameter bag of a request.
//
// Values are whatever a JSON or YAML decoder produces: strings, numbers,
// booleans, lists and nested objects.
type Params map[string]any

// Group returns the nested object stored under key, or nil.
func (p Params) Group(key string) Params {
	switch g := p[key].(type) {
	case Params:
		return g
	case map[string]any:
		return Params(g)
	}
	return nil
}

// Lookup finds name in the given nested groups first, then at the top level,
// with the same precedence as Flatten. Empty values count as absent.
func (p Params) Lookup(name string, groups ...string) (any, bool) {
	for _, key := range groups {
		if g := p.Group(key); g != nil {
			if v, ok := g[name]; ok && v != nil {
				return v, !empty(v)
			}
		}
	}
	v, ok := p[name]
	if !ok || empty(v) {
		return nil, false
	}
	return v, true
}

// Flatten merges the top level with the given nested groups.
//
// Group objects themselves are not copied. Earlier groups win over later
// ones, and any group wins over the top level.
func (p Params) Flatten(groups ...string) Params {
	skip := make(map[string]bool, len(groups))
	for _, key := range groups {
		skip[key] = true
	}
	out := make(Params, len(p))
	for k, v := range p {
		if skip[k] {
			continue
		}
		out[k] = v
	}
	for i := len(groups) - 1; i >= 0; i-- {
		for k, v := range p.Group(groups[i]) {
			out[k] = v
		}
	}
	return out
}

// Has reports whether name is present with a non-empty value.
func (p Params) Has(name string) bool {
	v, ok := p[name]
	return ok && !empty(v)
}

// empty reports whether v is nil or the empty string.
func empty(v any) bool {
	if v == nil {
		return true
	}
	s, isString := v.(string)
	return isString && s == ""
}

// String renders the value of name as a command-line token.
func (p Params) String(name string) (string, bool) {
	if !p.Has(name) {
		return "", false
	}
	return FormatValue(p[name]), true
}

// Bool interprets the value of name as a boolean. Strings are parsed with
// strconv.ParseBool.
func (p Params) Bool(name string) (value bool, present bool) {
	switch v := p[name].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatValue renders a parameter value as a single token. Lists are joined
// with commas, integral numbers drop the decimal point, objects are encoded
// as JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
