package providers

import (
	"github.com/systmms/cckmops/pkg/provider"
)

func azureTable() *Table {
	return newTable(provider.Azure, "Azure Key Vault keys, certificates and secrets",
		descriptors(map[string]provider.Descriptor{
			"key_name":                         str("Name of the Azure key"),
			"vault":                            str("Key vault id or name (name::subscription_id)"),
			"vault_name":                       str("Name of the Azure key vault"),
			"subscription_id":                  str("Azure subscription id"),
			"resource_group":                   str("Azure resource group of the vault"),
			"location":                         str("Azure region of the vault"),
			"kty":                              enum("Key type", "EC", "EC-HSM", "RSA", "RSA-HSM", "oct-HSM"),
			"key_size":                         integer("RSA key size in bits"),
			"curve_name":                       enum("Elliptic curve", "P-256", "P-384", "P-521", "P-256K"),
			"key_ops":                          list("Permitted key operations"),
			"exportable":                       boolean("Whether the private key can be exported"),
			"release_policy_file":              str("Path of the key release policy JSON file"),
			"enabled":                          boolean("Whether the object is enabled"),
			"expires":                          str("Expiry time (RFC 3339)"),
			"not_before":                       str("Activation time (RFC 3339)"),
			"gone":                             boolean("Include deleted objects"),
			"source_key_id":                    str("CipherTrust key used as upload source"),
			"azure_keys_tags_jsonfile":         str("Path of a JSON file with key tags"),
			"azure_vaults_jsonfile":            str("Path of a JSON file describing the vault(s) to add"),
			"azure_vaults_tags_jsonfile":       str("Path of a JSON file with vault tags"),
			"certificate_name":                 str("Name of the Azure certificate"),
			"policy_jsonfile":                  str("Path of the certificate policy JSON file"),
			"certificate_file":                 str("Path of the PFX or PEM file to import"),
			"password":                         str("Password of the imported certificate"),
			"azure_certificates_tags_jsonfile": str("Path of a JSON file with certificate tags"),
			"secret_name":                      str("Name of the Azure secret"),
			"value":                            str("Secret value"),
			"content_type":                     str("Content type of the secret"),
			"azure_secrets_tags_jsonfile":      str("Path of a JSON file with secret tags"),
			"key_vaults":                       list("Key vaults to synchronize"),
		}),
		azureKeyOperations(),
		azureVaultOperations(),
		azureCertificateOperations(),
		azureSecretOperations(),
		[]Operation{op("subscriptions", "list", req("connection"), "skip", "limit")},
		syncOperations("key_vaults"),
	)
}

func azureKeyOperations() []Operation {
	return append(byID("keys", "get", "delete", "soft_delete", "hard_delete", "recover", "enable", "disable", "rotate", "backup"),
		op("keys", "list", nil, "key_name", "vault_name", "subscription_id", "status", "gone", "skip", "limit"),
		op("keys", "restore", req("id", "vault")),
		op("keys", "create", req("key_name", "vault", "kty"),
			"key_size", "curve_name", "key_ops", "exportable", "release_policy_file", "enabled", "expires", "not_before", "azure_keys_tags_jsonfile"),
		op("keys", "update", req("id"), "enabled", "expires", "not_before", "key_ops", "azure_keys_tags_jsonfile"),
		op("keys", "upload", req("key_name", "vault", "source_key_id"), "exportable", "key_ops", "enabled", "azure_keys_tags_jsonfile"),
	)
}

func azureVaultOperations() []Operation {
	return append(byID("vaults", "get", "delete"),
		op("vaults", "list", nil, "name", "subscription_id", "connection", "skip", "limit"),
		op("vaults", "update", req("id"), "connection", "subscription_id"),
		// Either azure_vaults_jsonfile or the individual fields; the builder enforces it.
		op("vaults", "create", nil,
			"azure_vaults_jsonfile", "azure_vaults_tags_jsonfile", "vault_name", "subscription_id", "resource_group", "location", "connection"),
	)
}

func azureCertificateOperations() []Operation {
	return append(byID("certificates", "get", "delete", "soft_delete", "hard_delete", "recover"),
		op("certificates", "list", nil, "certificate_name", "vault_name", "status", "gone", "skip", "limit"),
		op("certificates", "create", req("certificate_name", "vault", "policy_jsonfile"), "enabled", "azure_certificates_tags_jsonfile"),
		op("certificates", "import", req("certificate_name", "vault", "certificate_file"), "password", "exportable", "enabled"),
	)
}

func azureSecretOperations() []Operation {
	return append(byID("secrets", "get", "delete", "soft_delete", "hard_delete", "recover"),
		op("secrets", "list", nil, "secret_name", "vault_name", "status", "gone", "skip", "limit"),
		op("secrets", "create", req("secret_name", "vault", "value"),
			"content_type", "enabled", "expires", "not_before", "azure_secrets_tags_jsonfile"),
	)
}
