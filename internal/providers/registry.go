package providers

import (
	"fmt"
	"sort"
	"strings"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/pkg/provider"
)

// Operation documents one provider operation.
type Operation struct {
	Group    string
	Verb     string
	Required []string
	Optional []string
}

// Name returns the operation name, "{group}_{verb}".
func (o Operation) Name() string {
	return o.Group + "_" + o.Verb
}

// Requirement returns the operation's parameter requirement.
func (o Operation) Requirement() provider.Requirement {
	return provider.Requirement{
		Required: append([]string{}, o.Required...),
		Optional: append([]string{}, o.Optional...),
	}
}

// Table is the static registry entry of one provider.
type Table struct {
	Provider    provider.Name
	Description string
	Descriptors map[string]provider.Descriptor
	Operations  map[string]Operation
}

func newTable(p provider.Name, description string, descriptors map[string]provider.Descriptor, ops ...[]Operation) *Table {
	t := &Table{
		Provider:    p,
		Description: description,
		Descriptors: descriptors,
		Operations:  make(map[string]Operation),
	}
	for _, group := range ops {
		for _, op := range group {
			t.Operations[op.Name()] = op
		}
	}
	return t
}

// Registry manages the per-provider action tables
type Registry struct {
	tables map[provider.Name]*Table
}

// NewRegistry creates a new registry with the built-in provider tables.
// The result is read-only after construction and safe for concurrent use.
func NewRegistry() *Registry {
	registry := &Registry{
		tables: make(map[provider.Name]*Table),
	}

	registry.Register(azureTable())
	registry.Register(awsTable())
	registry.Register(gcpTable())
	registry.Register(ociTable())

	return registry
}

// Register adds or replaces a provider table
func (r *Registry) Register(t *Table) {
	r.tables[t.Provider] = t
}

// Providers returns the registered providers in stable order
func (r *Registry) Providers() []provider.Name {
	names := make([]provider.Name, 0, len(r.tables))
	for _, n := range provider.All() {
		if _, ok := r.tables[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// Table returns the table of a provider
func (r *Registry) Table(p provider.Name) (*Table, error) {
	t, ok := r.tables[p]
	if !ok {
		return nil, dserrors.UnknownAction(string(p))
	}
	return t, nil
}

// ListOperations returns the sorted operation names of a provider
func (r *Registry) ListOperations(p provider.Name) ([]string, error) {
	t, err := r.Table(p)
	if err != nil {
		return nil, err
	}
	ops := make([]string, 0, len(t.Operations))
	for name := range t.Operations {
		ops = append(ops, name)
	}
	sort.Strings(ops)
	return ops, nil
}

// SchemaFor returns a copy of a provider's parameter descriptors
func (r *Registry) SchemaFor(p provider.Name) (map[string]provider.Descriptor, error) {
	t, err := r.Table(p)
	if err != nil {
		return nil, err
	}
	out := make(map[string]provider.Descriptor, len(t.Descriptors))
	for k, v := range t.Descriptors {
		out[k] = v
	}
	return out, nil
}

// RequirementsFor returns every operation requirement of a provider
func (r *Registry) RequirementsFor(p provider.Name) (map[string]provider.Requirement, error) {
	t, err := r.Table(p)
	if err != nil {
		return nil, err
	}
	out := make(map[string]provider.Requirement, len(t.Operations))
	for name, op := range t.Operations {
		out[name] = op.Requirement()
	}
	return out, nil
}

// Parse splits a composite action name and checks it against the registry
func (r *Registry) Parse(action string) (provider.Action, error) {
	prefix, operation, ok := strings.Cut(action, "_")
	if !ok || operation == "" {
		return provider.Action{}, dserrors.UnknownAction(action)
	}
	p, ok := provider.ParseName(prefix)
	if !ok {
		return provider.Action{}, dserrors.UnknownAction(action)
	}
	t, ok := r.tables[p]
	if !ok {
		return provider.Action{}, dserrors.UnknownAction(action)
	}
	op, ok := t.Operations[operation]
	if !ok {
		return provider.Action{}, dserrors.UnknownAction(action)
	}
	return provider.Action{Provider: p, Operation: operation, Group: op.Group}, nil
}

// Operation returns the registry entry of a composite action
func (r *Registry) Operation(action string) (Operation, error) {
	a, err := r.Parse(action)
	if err != nil {
		return Operation{}, err
	}
	return r.tables[a.Provider].Operations[a.Operation], nil
}

// Requirement returns the requirement of a composite action
func (r *Registry) Requirement(action string) (provider.Requirement, error) {
	op, err := r.Operation(action)
	if err != nil {
		return provider.Requirement{}, err
	}
	return op.Requirement(), nil
}

// Descriptor returns the descriptor of one provider parameter
func (r *Registry) Descriptor(p provider.Name, name string) (provider.Descriptor, bool) {
	t, ok := r.tables[p]
	if !ok {
		return provider.Descriptor{}, false
	}
	d, ok := t.Descriptors[name]
	return d, ok
}

// Actions returns every composite action name, sorted
func (r *Registry) Actions() []string {
	var actions []string
	for _, p := range r.Providers() {
		ops, _ := r.ListOperations(p)
		for _, op := range ops {
			actions = append(actions, string(p)+"_"+op)
		}
	}
	sort.Strings(actions)
	return actions
}

// Validate checks the structural invariants of every table: operation names
// are unique per provider, required and optional sets are disjoint, and every
// listed parameter is documented.
func (r *Registry) Validate() error {
	var problems []string
	for _, p := range r.Providers() {
		t := r.tables[p]
		for name, op := range t.Operations {
			seen := make(map[string]bool)
			for _, param := range op.Required {
				seen[param] = true
				if _, ok := t.Descriptors[param]; !ok {
					problems = append(problems, fmt.Sprintf("%s_%s: required %q is undocumented", p, name, param))
				}
			}
			for _, param := range op.Optional {
				if seen[param] {
					problems = append(problems, fmt.Sprintf("%s_%s: %q is both required and optional", p, name, param))
				}
				if _, ok := t.Descriptors[param]; !ok {
					problems = append(problems, fmt.Sprintf("%s_%s: optional %q is undocumented", p, name, param))
				}
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("registry invariants violated:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
