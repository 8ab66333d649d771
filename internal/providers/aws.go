package providers

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func awsTable() *Table {
	return newTable(provider.AWS, "AWS KMS keys, KMS accounts and key jobs",
		descriptors(map[string]provider.Descriptor{
			"alias":                              str("Key alias, with or without the alias/ prefix"),
			"kms":                                str("Name or id of the CipherTrust AWS KMS account"),
			"region":                             str("AWS region"),
			"regions":                            list("AWS regions"),
			"key_state":                          enum("Filter by key state", "Enabled", "Disabled", "PendingDeletion", "PendingImport", "Unavailable"),
			"days":                               integer("Pending window in days before deletion"),
			"description":                        str("Description"),
			"source_key_id":                      str("CipherTrust key providing the imported material"),
			"key_expiration":                     boolean("Whether the imported material expires"),
			"valid_to":                           str("Expiry time of the imported material (RFC 3339)"),
			"replica_region":                     str("Region of the replica key"),
			"aws_keys_tags_jsonfile":             str("Path of a JSON file with key tags"),
			"key_usage":                          enum("Cryptographic usage", "ENCRYPT_DECRYPT", "SIGN_VERIFY", "GENERATE_VERIFY_MAC"),
			"key_spec":                           str("Key spec, for example SYMMETRIC_DEFAULT or RSA_2048"),
			"origin":                             enum("Key material origin", "AWS_KMS", "EXTERNAL", "AWS_CLOUDHSM"),
			"multi_region":                       boolean("Create a multi-region primary key"),
			"bypass_policy_lockout_safety_check": boolean("Skip the key policy lockout safety check"),
			"tags":                               list("Key tags as key=value pairs"),
			"policy_jsonfile":                    str("Path of the key policy JSON file"),
			"account_id":                         str("AWS account id"),
			"aws_kms_jsonfile":                   str("Path of a JSON file describing the KMS account"),
			"job_type":                           enum("Bulk job type", "enable", "disable", "rotate", "schedule_deletion", "cancel_deletion"),
			"key_ids":                            list("Key identifiers"),
			"schedule":                           str("Schedule name or id"),
			"include_disabled":                   boolean("Include disabled keys"),
		}),
		awsKeyOperations(),
		awsKMSOperations(),
		syncOperations("kms", "regions"),
		[]Operation{
			op("bulk_jobs", "create", req("job_type", "key_ids"), "schedule", "description"),
			op("bulk_jobs", "list", nil, "status", "skip", "limit"),
			op("bulk_jobs", "get", req("id")),
			op("bulk_jobs", "cancel", req("id")),
			op("key_backup", "create", req("kms"), "regions", "key_ids", "include_disabled"),
			op("key_backup", "update", req("id"), "schedule", "include_disabled"),
		},
	)
}

func awsKeyOperations() []Operation {
	return append(byID("keys", "get", "enable", "disable", "rotate", "cancel_deletion",
		"enable_auto_rotation", "disable_auto_rotation", "delete_material"),
		op("keys", "list", nil, "alias", "kms", "region", "key_state", "skip", "limit"),
		op("keys", "schedule_deletion", req("id", "days")),
		op("keys", "add_alias", req("id", "alias")),
		op("keys", "delete_alias", req("id", "alias")),
		op("keys", "update_description", req("id", "description")),
		op("keys", "import_material", req("id", "source_key_id"), "key_expiration", "valid_to"),
		op("keys", "replicate", req("id", "replica_region"), "description", "aws_keys_tags_jsonfile"),
		op("keys", "create", req("region", "kms"),
			"alias", "description", "key_usage", "key_spec", "origin", "multi_region",
			"bypass_policy_lockout_safety_check", "tags", "policy_jsonfile"),
	)
}

func awsKMSOperations() []Operation {
	return append(byID("kms", "get", "delete"),
		op("kms", "list", nil, "name", "account_id", "skip", "limit"),
		op("kms", "update", req("id"), "connection", "regions"),
		op("kms", "create", nil, "aws_kms_jsonfile", "name", "account_id", "connection", "regions"),
	)
}
