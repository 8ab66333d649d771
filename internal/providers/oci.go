package providers

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func ociTable() *Table {
	return newTable(provider.OCI, "Oracle Cloud Infrastructure vaults and keys",
		descriptors(map[string]provider.Descriptor{
			"compartment_id":            str("OCI compartment OCID"),
			"region":                    str("OCI region"),
			"vault_id":                  str("OCID of the vault to add"),
			"oci_vaults_jsonfile":       str("Path of a JSON file describing the vaults to add"),
			"vault":                     str("Vault id or name"),
			"vault_name":                str("Name of the OCI vault"),
			"vaults":                    list("Vaults to synchronize"),
			"key_name":                  str("Display name of the OCI key"),
			"state":                     str("Filter by lifecycle state"),
			"days":                      integer("Pending window in days before deletion"),
			"algorithm":                 enum("Key algorithm", "AES", "RSA", "ECDSA"),
			"length":                    integer("Key length in bytes"),
			"curve_id":                  enum("ECDSA curve", "NIST_P256", "NIST_P384", "NIST_P521"),
			"protection_mode":           enum("Protection mode", "HSM", "SOFTWARE"),
			"is_auto_rotation_enabled":  boolean("Enable automatic key rotation"),
			"rotation_interval_in_days": integer("Automatic rotation interval in days"),
			"oci_keys_tags_jsonfile":    str("Path of a JSON file with key tags"),
		}),
		append(byID("vaults", "get", "delete"),
			op("vaults", "list", nil, "name", "compartment_id", "region", "skip", "limit"),
			op("vaults", "update", req("id"), "connection"),
			op("vaults", "create", nil, "oci_vaults_jsonfile", "vault_id", "region", "connection"),
		),
		append(byID("keys", "get", "enable", "disable", "rotate", "cancel_deletion"),
			op("keys", "list", nil, "key_name", "vault_name", "compartment_id", "state", "skip", "limit"),
			op("keys", "schedule_deletion", req("id", "days")),
			op("keys", "create", req("vault", "key_name", "algorithm", "length"),
				"curve_id", "protection_mode", "is_auto_rotation_enabled", "rotation_interval_in_days", "oci_keys_tags_jsonfile"),
		),
		[]Operation{op("compartments", "list", req("connection"), "skip", "limit")},
		syncOperations("vaults"),
	)
}
