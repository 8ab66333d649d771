package builder

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func newGCP() *Builder {
	keyring := s("keyring").as("--key-ring")
	t := map[string]buildFunc{
		"keyrings_list":   listing("keyrings", s("name"), s("project_id"), s("location"), s("skip"), s("limit")),
		"keyrings_get":    idOnly("keyrings", "get"),
		"keyrings_delete": idOnly("keyrings", "delete"),
		"keyrings_create": withJSONFile(jsonFileSpec{
			resource: "keyrings",
			jsonFile: s("gcp_keyrings_jsonfile").as("--keyring-jsonfile"),
			fields:   flags(s("project_id"), s("location"), l("keyrings"), s("connection")),
		}),

		"keys_list": listing("keys",
			s("key_name"), keyring, s("project_id"), s("location"), s("skip"), s("limit")),
		"keys_get":    idOnly("keys", "get"),
		"keys_rotate": idOnly("keys", "rotate"),
		"keys_create": withRequired("keys", "create",
			flags(keyring, s("key_name"), s("purpose")),
			s("algorithm"), s("protection_level"), s("rotation_period"), s("next_rotation_time"),
			l("labels"), b("skip_initial_version_creation")),
		"keys_update": withRequired("keys", "update",
			flags(s("id")), s("rotation_period"), s("next_rotation_time"), l("labels")),

		"versions_list": withRequired("versions", "list", flags(s("key_id")), s("state"), s("skip"), s("limit")),
		"projects_list": withRequired("projects", "list", flags(s("connection")), s("skip"), s("limit")),
	}
	for _, verb := range []string{"get", "enable", "disable", "destroy", "restore"} {
		t["versions_"+verb] = idOnly("versions", verb)
	}

	return &Builder{
		provider:   provider.GCP,
		style:      BoolBare,
		strategies: merge(t, syncJobs(l("keyrings"))),
	}
}
