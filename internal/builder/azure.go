package builder

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func newAzure() *Builder {
	vault := s("vault").as("--key-vault")
	return &Builder{
		provider: provider.Azure,
		style:    BoolPair,
		strategies: merge(
			azureKeys(vault),
			azureVaults(),
			azureCertificates(vault),
			azureSecrets(vault),
			map[string]buildFunc{
				"subscriptions_list": withRequired("subscriptions", "list", flags(s("connection")), s("skip"), s("limit")),
			},
			syncJobs(l("key_vaults")),
		),
	}
}

func azureKeys(vault flag) map[string]buildFunc {
	tags := s("azure_keys_tags_jsonfile").as("--tags-jsonfile")
	t := map[string]buildFunc{
		"keys_list": listing("keys",
			s("key_name"), s("vault_name"), s("subscription_id"), s("status"), b("gone"), s("skip"), s("limit")),
		"keys_restore": idOnly("keys", "restore", vault),
		"keys_create": withRequired("keys", "create",
			flags(s("key_name"), vault, s("kty")),
			s("key_size"), s("curve_name"), l("key_ops"), b("exportable"), s("release_policy_file"),
			b("enabled"), s("expires"), s("not_before"), tags),
		"keys_update": withRequired("keys", "update",
			flags(s("id")),
			b("enabled"), s("expires"), s("not_before"), l("key_ops"), tags),
		"keys_upload": withRequired("keys", "upload",
			flags(s("key_name"), vault, s("source_key_id").as("--source-key-identifier")),
			b("exportable"), l("key_ops"), b("enabled"), tags),
	}
	for _, verb := range []string{"get", "delete", "soft_delete", "hard_delete", "recover", "enable", "disable", "rotate", "backup"} {
		t["keys_"+verb] = idOnly("keys", verb)
	}
	return t
}

func azureVaults() map[string]buildFunc {
	return map[string]buildFunc{
		"vaults_list":   listing("vaults", s("name"), s("subscription_id"), s("connection"), s("skip"), s("limit")),
		"vaults_get":    idOnly("vaults", "get"),
		"vaults_delete": idOnly("vaults", "delete"),
		"vaults_update": withRequired("vaults", "update", flags(s("id")), s("connection"), s("subscription_id")),
		"vaults_create": withJSONFile(jsonFileSpec{
			resource: "vaults",
			jsonFile: s("azure_vaults_jsonfile").as("--vault-jsonfile"),
			tagsFile: "azure_vaults_tags_jsonfile",
			fields:   flags(s("vault_name"), s("subscription_id"), s("resource_group"), s("location")),
			optional: flags(s("connection")),
		}),
	}
}

func azureCertificates(vault flag) map[string]buildFunc {
	t := map[string]buildFunc{
		"certificates_list": listing("certificates",
			s("certificate_name"), s("vault_name"), s("status"), b("gone"), s("skip"), s("limit")),
		"certificates_create": withRequired("certificates", "create",
			flags(s("certificate_name"), vault, s("policy_jsonfile")),
			b("enabled"), s("azure_certificates_tags_jsonfile").as("--tags-jsonfile")),
		"certificates_import": withRequired("certificates", "import",
			flags(s("certificate_name"), vault, s("certificate_file")),
			s("password"), b("exportable"), b("enabled")),
	}
	for _, verb := range []string{"get", "delete", "soft_delete", "hard_delete", "recover"} {
		t["certificates_"+verb] = idOnly("certificates", verb)
	}
	return t
}

func azureSecrets(vault flag) map[string]buildFunc {
	t := map[string]buildFunc{
		"secrets_list": listing("secrets",
			s("secret_name"), s("vault_name"), s("status"), b("gone"), s("skip"), s("limit")),
		"secrets_create": withRequired("secrets", "create",
			flags(s("secret_name"), vault, s("value")),
			s("content_type"), b("enabled"), s("expires"), s("not_before"),
			s("azure_secrets_tags_jsonfile").as("--tags-jsonfile")),
	}
	for _, verb := range []string{"get", "delete", "soft_delete", "hard_delete", "recover"} {
		t["secrets_"+verb] = idOnly("secrets", verb)
	}
	return t
}
