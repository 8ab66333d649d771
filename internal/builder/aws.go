package builder

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func newAWS() *Builder {
	return &Builder{
		provider: provider.AWS,
		style:    BoolBare,
		strategies: merge(
			awsKeys(),
			awsKMS(),
			syncJobs(s("kms"), l("regions")),
			awsJobs(),
		),
	}
}

func awsKeys() map[string]buildFunc {
	t := map[string]buildFunc{
		"keys_list": listing("keys",
			s("alias"), s("kms"), s("region"), s("key_state"), s("skip"), s("limit")),
		"keys_schedule_deletion":  idOnly("keys", "schedule_deletion", s("days")),
		"keys_add_alias":          idOnly("keys", "add_alias", s("alias")),
		"keys_delete_alias":       idOnly("keys", "delete_alias", s("alias")),
		"keys_update_description": idOnly("keys", "update_description", s("description")),
		"keys_import_material": withRequired("keys", "import_material",
			flags(s("id"), s("source_key_id").as("--source-key-identifier")),
			b("key_expiration"), s("valid_to")),
		"keys_replicate": withRequired("keys", "replicate",
			flags(s("id"), s("replica_region")),
			s("description"), s("aws_keys_tags_jsonfile").as("--tags-jsonfile")),
		"keys_create": withRequired("keys", "create",
			flags(s("region"), s("kms")),
			s("alias"), s("description"), s("key_usage"), s("key_spec"), s("origin"),
			b("multi_region"), b("bypass_policy_lockout_safety_check"), l("tags"), s("policy_jsonfile")),
	}
	for _, verb := range []string{"get", "enable", "disable", "rotate", "cancel_deletion",
		"enable_auto_rotation", "disable_auto_rotation", "delete_material"} {
		t["keys_"+verb] = idOnly("keys", verb)
	}
	return t
}

func awsKMS() map[string]buildFunc {
	return map[string]buildFunc{
		"kms_list":   listing("kms", s("name"), s("account_id"), s("skip"), s("limit")),
		"kms_get":    idOnly("kms", "get"),
		"kms_delete": idOnly("kms", "delete"),
		"kms_update": withRequired("kms", "update", flags(s("id")), s("connection"), l("regions")),
		"kms_create": withJSONFile(jsonFileSpec{
			resource: "kms",
			jsonFile: s("aws_kms_jsonfile").as("--kms-jsonfile"),
			fields:   flags(s("name"), s("account_id"), s("connection"), l("regions")),
		}),
	}
}

func awsJobs() map[string]buildFunc {
	const (
		bulk   = "bulk-jobs"
		backup = "cloud-key-backup"
	)
	return map[string]buildFunc{
		"bulk_jobs_create": withRequired(bulk, "create",
			flags(s("job_type"), l("key_ids")), s("schedule"), s("description")),
		"bulk_jobs_list":   listing(bulk, s("status"), s("skip"), s("limit")),
		"bulk_jobs_get":    idOnly(bulk, "get"),
		"bulk_jobs_cancel": idOnly(bulk, "cancel"),
		"key_backup_create": withRequired(backup, "create",
			flags(s("kms")), l("regions"), l("key_ids"), b("include_disabled")),
		"key_backup_update": withRequired(backup, "update",
			flags(s("id")), s("schedule"), b("include_disabled")),
	}
}
