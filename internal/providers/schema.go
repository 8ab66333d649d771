package providers

import (
	"github.com/systmms/cckmops/pkg/provider"
)

// SchemaDocument is the queryable description of the whole action surface.
type SchemaDocument struct {
	Actions      []string                                  `json:"actions" yaml:"actions"`
	Parameters   map[string]map[string]provider.Descriptor `json:"parameters" yaml:"parameters"`
	Requirements map[string]provider.Requirement           `json:"requirements" yaml:"requirements"`
}

// Document merges every provider's descriptors and requirements into one
// document. Parameters are keyed by the provider group key ("azure_params"),
// requirements by composite action name.
func (r *Registry) Document() SchemaDocument {
	doc := SchemaDocument{
		Actions:      r.Actions(),
		Parameters:   make(map[string]map[string]provider.Descriptor),
		Requirements: make(map[string]provider.Requirement),
	}
	for _, p := range r.Providers() {
		descriptors, _ := r.SchemaFor(p)
		doc.Parameters[p.GroupKey()] = descriptors

		reqs, _ := r.RequirementsFor(p)
		for op, req := range reqs {
			doc.Requirements[string(p)+"_"+op] = req
		}
	}
	return doc
}

// ActionSchema returns a JSON schema for the flattened parameters of one
// action. Only the action's own parameters are constrained; presence is
// checked separately so the schema lists no required properties.
func (r *Registry) ActionSchema(action string) (map[string]any, error) {
	a, err := r.Parse(action)
	if err != nil {
		return nil, err
	}
	t := r.tables[a.Provider]
	op := t.Operations[a.Operation]

	properties := make(map[string]any)
	for _, name := range append(append([]string{}, op.Required...), op.Optional...) {
		properties[name] = descriptorSchema(t.Descriptors[name])
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-04/schema#",
		"title":                action,
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}, nil
}

func descriptorSchema(d provider.Descriptor) map[string]any {
	var s map[string]any
	switch d.Type {
	case provider.TypeBoolean:
		s = map[string]any{
			"anyOf": []any{
				map[string]any{"type": "boolean"},
				map[string]any{"type": "string", "enum": []any{"true", "false"}},
			},
		}
	case provider.TypeInteger:
		s = map[string]any{
			"anyOf": []any{
				map[string]any{"type": "integer"},
				map[string]any{"type": "string", "pattern": "^-?[0-9]+$"},
			},
		}
	case provider.TypeArray:
		items := d.Items
		if items == "" {
			items = provider.TypeString
		}
		s = map[string]any{
			"anyOf": []any{
				map[string]any{"type": "array", "items": map[string]any{"type": items}},
				map[string]any{"type": "string"},
			},
		}
	case "":
		s = map[string]any{}
	default:
		s = map[string]any{"type": d.Type}
	}
	if len(d.Enum) > 0 {
		enum := make([]any, len(d.Enum))
		for i, v := range d.Enum {
			enum[i] = v
		}
		s["enum"] = enum
	}
	if d.Description != "" {
		s["description"] = d.Description
	}
	return s
}
