package providers

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func op(group, verb string, required []string, optional ...string) Operation {
	return Operation{Group: group, Verb: verb, Required: required, Optional: optional}
}

func req(names ...string) []string {
	return names
}

// byID declares identifier-only operations that take exactly --id.
func byID(group string, verbs ...string) []Operation {
	ops := make([]Operation, 0, len(verbs))
	for _, verb := range verbs {
		ops = append(ops, op(group, verb, req("id")))
	}
	return ops
}

// syncOperations declares the synchronization job actions shared by every
// provider. startFilters are the provider-specific scope lists of "start".
func syncOperations(startFilters ...string) []Operation {
	start := append(append([]string{}, startFilters...), "synchronize_all")
	return []Operation{
		op("sync", "start", nil, start...),
		op("sync", "list", nil, "status", "skip", "limit"),
		op("sync", "get", req("id")),
		op("sync", "status", nil, "id"),
		op("sync", "cancel", req("id")),
	}
}

func str(description string) provider.Descriptor {
	return provider.Descriptor{Type: provider.TypeString, Description: description}
}

func integer(description string) provider.Descriptor {
	return provider.Descriptor{Type: provider.TypeInteger, Description: description}
}

func boolean(description string) provider.Descriptor {
	return provider.Descriptor{Type: provider.TypeBoolean, Description: description}
}

func list(description string) provider.Descriptor {
	return provider.Descriptor{Type: provider.TypeArray, Items: provider.TypeString, Description: description}
}

func enum(description string, values ...string) provider.Descriptor {
	return provider.Descriptor{Type: provider.TypeString, Description: description, Enum: values}
}

// descriptors merges the common descriptors with provider-specific ones.
func descriptors(specific map[string]provider.Descriptor) map[string]provider.Descriptor {
	out := map[string]provider.Descriptor{
		"id":              str("Resource identifier: UUID, provider-native id, or name"),
		"name":            str("Filter by name"),
		"connection":      str("Name or id of the CipherTrust connection"),
		"status":          str("Filter by status"),
		"skip":            integer("Number of records to skip"),
		"limit":           integer("Maximum number of records to return"),
		"synchronize_all": boolean("Synchronize every resource of the provider"),
	}
	for k, v := range specific {
		out[k] = v
	}
	return out
}
