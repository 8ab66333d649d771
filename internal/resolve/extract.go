package resolve

import (
	"strings"
)

// Record is one resource as returned by a list operation.
type Record map[string]any

// extractor pulls records out of one known response shape.
type extractor func(result map[string]any) []Record

// extractors are tried in order; the first non-empty result wins.
var extractors = []extractor{
	topLevelResources,
	dataResources,
	dataItself,
}

// Records returns the resources of a list response.
func Records(result map[string]any) []Record {
	for _, extract := range extractors {
		if records := extract(result); len(records) > 0 {
			return records
		}
	}
	return nil
}

func topLevelResources(result map[string]any) []Record {
	return toRecords(result["resources"])
}

func dataResources(result map[string]any) []Record {
	data, ok := result["data"].(map[string]any)
	if !ok {
		return nil
	}
	return toRecords(data["resources"])
}

func dataItself(result map[string]any) []Record {
	switch data := result["data"].(type) {
	case []any:
		return toRecords(data)
	case map[string]any:
		if _, ok := data["id"]; ok {
			return []Record{data}
		}
	}
	return nil
}

func toRecords(v any) []Record {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

// Lookup extracts a value using a dotted path like "azure_param.name".
func (r Record) Lookup(path string) (any, bool) {
	var current any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

// ID returns the CCKM identifier of the record.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// names returns the string values found at path. Lists of strings yield
// every element.
func (r Record) names(path string) []string {
	v, ok := r.Lookup(path)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// match returns the id of the first record whose name fields equal one of
// candidates. With prefix set, a name matches when it starts with
// candidate+"::". The first matching record decides: when it carries no id,
// match reports a match with an empty id.
func match(records []Record, fields, candidates []string, prefix bool) (string, bool) {
	for _, record := range records {
		for _, field := range fields {
			for _, name := range record.names(field) {
				for _, candidate := range candidates {
					if name == candidate || (prefix && strings.HasPrefix(name, candidate+scopeSeparator)) {
						return record.ID(), true
					}
				}
			}
		}
	}
	return "", false
}
