package builder

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func newOCI() *Builder {
	t := map[string]buildFunc{
		"vaults_list":   listing("vaults", s("name"), s("compartment_id"), s("region"), s("skip"), s("limit")),
		"vaults_get":    idOnly("vaults", "get"),
		"vaults_delete": idOnly("vaults", "delete"),
		"vaults_update": withRequired("vaults", "update", flags(s("id")), s("connection")),
		"vaults_create": withJSONFile(jsonFileSpec{
			resource: "vaults",
			jsonFile: s("oci_vaults_jsonfile").as("--vault-jsonfile"),
			fields:   flags(s("vault_id"), s("region"), s("connection")),
		}),

		"keys_list": listing("keys",
			s("key_name"), s("vault_name"), s("compartment_id"), s("state"), s("skip"), s("limit")),
		"keys_schedule_deletion": idOnly("keys", "schedule_deletion", s("days")),
		"keys_create": withRequired("keys", "create",
			flags(s("vault"), s("key_name"), s("algorithm"), s("length")),
			s("curve_id"), s("protection_mode"), b("is_auto_rotation_enabled"), s("rotation_interval_in_days"),
			s("oci_keys_tags_jsonfile").as("--tags-jsonfile")),

		"compartments_list": withRequired("compartments", "list", flags(s("connection")), s("skip"), s("limit")),
	}
	for _, verb := range []string{"get", "enable", "disable", "rotate", "cancel_deletion"} {
		t["keys_"+verb] = idOnly("keys", verb)
	}

	return &Builder{
		provider:   provider.OCI,
		style:      BoolPair,
		strategies: merge(t, syncJobs(l("vaults"))),
	}
}
