package resolve

import (
	"github.com/systmms/cckmops/pkg/provider"
)

// Kind describes how resources of one provider group are looked up by name.
type Kind struct {
	// ListOperation is the operation listing the resources, e.g. "keys_list".
	ListOperation string
	// Filter is the list parameter that filters by exact name.
	Filter string
	// NameFields are record paths compared against the input. Dotted paths
	// address nested objects.
	NameFields []string
	// ScopeParam qualifies names with a scope, e.g. "subscription_id".
	ScopeParam string
	// AliasPrefix is tried in front of names that lack it.
	AliasPrefix string
}

// scopeSeparator joins a name and its scope in scoped record names.
const scopeSeparator = "::"

var kinds = map[provider.Name]map[string]Kind{
	provider.Azure: {
		"keys":         {ListOperation: "keys_list", Filter: "key_name", NameFields: []string{"name", "key_name"}},
		"vaults":       {ListOperation: "vaults_list", Filter: "name", NameFields: []string{"name", "azure_param.name"}, ScopeParam: "subscription_id"},
		"certificates": {ListOperation: "certificates_list", Filter: "certificate_name", NameFields: []string{"name"}},
		"secrets":      {ListOperation: "secrets_list", Filter: "secret_name", NameFields: []string{"name"}},
	},
	provider.AWS: {
		"keys": {ListOperation: "keys_list", Filter: "alias", NameFields: []string{"alias", "name"}, AliasPrefix: "alias/"},
		"kms":  {ListOperation: "kms_list", Filter: "name", NameFields: []string{"name"}},
	},
	provider.GCP: {
		"keyrings": {ListOperation: "keyrings_list", Filter: "name", NameFields: []string{"name"}},
		"keys":     {ListOperation: "keys_list", Filter: "key_name", NameFields: []string{"name", "key_name"}},
	},
	provider.OCI: {
		"vaults": {ListOperation: "vaults_list", Filter: "name", NameFields: []string{"name", "oci_param.display_name"}},
		"keys":   {ListOperation: "keys_list", Filter: "key_name", NameFields: []string{"name", "oci_param.display_name"}},
	},
}

// KindFor returns the resource kind of a provider group.
func KindFor(p provider.Name, group string) (Kind, bool) {
	k, ok := kinds[p][group]
	return k, ok
}

// identifierVerbs are the verbs whose "id" parameter names an existing resource.
var identifierVerbs = map[string]bool{
	"get":                   true,
	"update":                true,
	"delete":                true,
	"enable":                true,
	"disable":               true,
	"rotate":                true,
	"backup":                true,
	"restore":               true,
	"export":                true,
	"recover":               true,
	"hard_delete":           true,
	"soft_delete":           true,
	"schedule_deletion":     true,
	"cancel_deletion":       true,
	"enable_auto_rotation":  true,
	"disable_auto_rotation": true,
	"add_alias":             true,
	"delete_alias":          true,
	"update_description":    true,
	"import_material":       true,
	"delete_material":       true,
	"replicate":             true,
	"destroy":               true,
}

// ConsumesIdentifier reports whether verb takes an existing resource id.
func ConsumesIdentifier(verb string) bool {
	return identifierVerbs[verb]
}
