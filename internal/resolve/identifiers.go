package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/google/uuid"

	"github.com/systmms/cckmops/pkg/provider"
)

// IsUUID reports whether s is a UUID in canonical 8-4-4-4-12 form.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

var gcpResourcePath = regexp.MustCompile(`^projects/[^/]+/locations/[^/]+(/.+)?$`)

// IsNative reports whether s is already a provider-native identifier that
// CCKM accepts as is.
func IsNative(p provider.Name, s string) bool {
	switch p {
	case provider.Azure:
		return isAzureResourceID(s) || isKeyVaultObjectURL(s)
	case provider.AWS:
		return arn.IsARN(s) || strings.HasPrefix(s, "mrk-")
	case provider.GCP:
		return gcpResourcePath.MatchString(s)
	case provider.OCI:
		return strings.HasPrefix(s, "ocid1.")
	}
	return false
}

func isAzureResourceID(s string) bool {
	if !strings.HasPrefix(strings.ToLower(s), "/subscriptions/") {
		return false
	}
	_, err := arm.ParseResourceID(s)
	return err == nil
}

var keyVaultCollections = map[string]bool{"keys": true, "secrets": true, "certificates": true}

// isKeyVaultObjectURL accepts https://<vault>.vault.azure.net/<collection>/<name>[/<version>].
func isKeyVaultObjectURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, ".vault.azure.net") && !strings.HasSuffix(host, ".managedhsm.azure.net") {
		return false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || !keyVaultCollections[segments[0]] {
		return false
	}
	// azsecrets.ID panics on paths without a name segment, checked above.
	id := azsecrets.ID(s)
	return id.Name() != ""
}
