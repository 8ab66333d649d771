package providers

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func gcpTable() *Table {
	return newTable(provider.GCP, "Google Cloud KMS key rings, keys and key versions",
		descriptors(map[string]provider.Descriptor{
			"project_id":                    str("Google Cloud project id"),
			"location":                      str("Cloud KMS location"),
			"keyrings":                      list("Key ring names"),
			"keyring":                       str("Key ring id or name"),
			"gcp_keyrings_jsonfile":         str("Path of a JSON file describing the key rings to add"),
			"key_name":                      str("Name of the Cloud KMS key"),
			"purpose":                       enum("Key purpose", "ENCRYPT_DECRYPT", "ASYMMETRIC_SIGN", "ASYMMETRIC_DECRYPT", "MAC"),
			"algorithm":                     str("Key version algorithm"),
			"protection_level":              enum("Protection level", "SOFTWARE", "HSM", "EXTERNAL"),
			"rotation_period":               str("Automatic rotation period, for example 7776000s"),
			"next_rotation_time":            str("Next rotation time (RFC 3339)"),
			"labels":                        list("Key labels as key=value pairs"),
			"skip_initial_version_creation": boolean("Create the key without an initial version"),
			"key_id":                        str("Key id whose versions are listed"),
			"state":                         str("Filter by state"),
		}),
		append(byID("keyrings", "get", "delete"),
			op("keyrings", "list", nil, "name", "project_id", "location", "skip", "limit"),
			op("keyrings", "create", nil, "gcp_keyrings_jsonfile", "project_id", "location", "keyrings", "connection"),
		),
		append(byID("keys", "get", "rotate"),
			op("keys", "list", nil, "key_name", "keyring", "project_id", "location", "skip", "limit"),
			op("keys", "create", req("keyring", "key_name", "purpose"),
				"algorithm", "protection_level", "rotation_period", "next_rotation_time", "labels", "skip_initial_version_creation"),
			op("keys", "update", req("id"), "rotation_period", "next_rotation_time", "labels"),
		),
		append(byID("versions", "get", "enable", "disable", "destroy", "restore"),
			op("versions", "list", req("key_id"), "state", "skip", "limit"),
		),
		[]Operation{op("projects", "list", req("connection"), "skip", "limit")},
		syncOperations("keyrings"),
	)
}
