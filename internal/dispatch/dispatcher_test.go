package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/cckmops/internal/dispatch"
	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/policy"
	"github.com/systmms/cckmops/internal/resolve"
	"github.com/systmms/cckmops/pkg/exec"
	"github.com/systmms/cckmops/pkg/provider"
	"github.com/systmms/cckmops/tests/testutil"
)

const keyUUID = "11111111-1111-1111-1111-111111111111"

func listResult(records ...map[string]any) exec.Result {
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r
	}
	return exec.Result{"data": map[string]any{"resources": items}}
}

func TestDispatchResolvesAzureKeyName(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor().
		On("cckm azure keys list", listResult(map[string]any{"id": keyUUID, "name": "my-key"})).
		On("cckm azure keys get", exec.Result{"data": map[string]any{"id": keyUUID, "name": "my-key"}})
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_keys_get",
		Params: provider.Params{"id": "my-key"},
	})

	require.True(t, resp.OK(), resp.Error)
	assert.Equal(t, []string{"cckm", "azure", "keys", "get", "--id", keyUUID}, resp.Command)
	assert.Equal(t, map[string]any{"id": keyUUID, "name": "my-key"}, resp.Data)

	gets := fake.Commands("cckm", "azure", "keys", "get")
	require.Len(t, gets, 1)
	assert.Equal(t, []string{"cckm", "azure", "keys", "get", "--id", keyUUID}, gets[0])
}

func TestDispatchMissingParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  provider.Params
		wantMsg string
	}{
		{
			name:    "nothing given",
			params:  nil,
			wantMsg: "Missing required parameters for azure_keys_create: [key_name, vault, kty]",
		},
		{
			name:    "partial",
			params:  provider.Params{"key_name": "k1"},
			wantMsg: "Missing required parameters for azure_keys_create: [vault, kty]",
		},
		{
			name:    "nested group counts",
			params:  provider.Params{"azure_keys_params": map[string]any{"key_name": "k1", "vault": "v1"}},
			wantMsg: "Missing required parameters for azure_keys_create: [kty]",
		},
		{
			name:    "empty strings count as missing",
			params:  provider.Params{"key_name": "", "azure_keys_params": map[string]any{"vault": "v1", "kty": ""}, "kty": "RSA"},
			wantMsg: "Missing required parameters for azure_keys_create: [key_name, kty]",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := testutil.NewFakeExecutor()
			d := dispatch.New(fake, dispatch.Options{}, nil)

			resp := d.Dispatch(context.Background(), dispatch.Request{Action: "azure_keys_create", Params: tt.params})

			assert.False(t, resp.OK())
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Equal(t, dserrors.KindMissingParameters, resp.Kind)
			assert.Empty(t, fake.Calls(), "executor must not run for invalid requests")
		})
	}
}

func TestDispatchEmptyIDIsMissingParameters(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{Action: "azure_keys_get", Params: provider.Params{"id": ""}})

	assert.Equal(t, dserrors.KindMissingParameters, resp.Kind)
	assert.Equal(t, "Missing required parameters for azure_keys_get: [id]", resp.Error)
	assert.Empty(t, fake.Calls())
}

func TestDispatchVaultCreateFromFields(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_vaults_create",
		Params: provider.Params{
			"vault_name":      "vault-a",
			"subscription_id": "sub-1",
			"resource_group":  "rg-1",
			"location":        "westeurope",
			"connection":      "azure-conn",
		},
	})

	require.True(t, resp.OK(), resp.Error)
	assert.Equal(t, []string{
		"cckm", "azure", "vaults", "create",
		"--vault-name", "vault-a",
		"--subscription-id", "sub-1",
		"--resource-group", "rg-1",
		"--location", "westeurope",
		"--connection", "azure-conn",
	}, resp.Command)

	conn, ok := d.Scopes().Connection("sub-1")
	assert.True(t, ok)
	assert.Equal(t, "azure-conn", conn)
}

func TestDispatchVaultCreateMissingFields(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_vaults_create",
		Params: provider.Params{"vault_name": "vault-a"},
	})

	assert.False(t, resp.OK())
	assert.Equal(t, dserrors.KindMissingParameter, resp.Kind)
	assert.Equal(t, "azure_vaults_create requires parameter(s): subscription_id, resource_group, location", resp.Error)
	assert.Empty(t, fake.Calls())
}

func TestDispatchUnknownAction(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	for _, action := range []string{"vault_keys_list", "azure_widgets_list", "azure", ""} {
		resp := d.Dispatch(context.Background(), dispatch.Request{Action: action})
		assert.False(t, resp.OK(), action)
		assert.Equal(t, dserrors.KindUnknownAction, resp.Kind, action)
		assert.Equal(t, action, resp.Action)
	}
	assert.Empty(t, fake.Calls())
}

func TestDispatchInvalidParameterType(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_keys_create",
		Params: provider.Params{"key_name": "k1", "vault": "v1", "kty": "RSA", "key_size": "big"},
	})

	assert.False(t, resp.OK())
	assert.Equal(t, dserrors.KindInvalidParameters, resp.Kind)
	assert.Contains(t, resp.Error, "key_size")
	assert.Empty(t, fake.Calls())
}

func TestDispatchExecutionFailures(t *testing.T) {
	t.Parallel()

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		fake := testutil.NewFakeExecutor().OnError("cckm aws keys list", errors.New("connection refused"))
		d := dispatch.New(fake, dispatch.Options{}, nil)

		resp := d.Dispatch(context.Background(), dispatch.Request{Action: "aws_keys_list"})

		assert.False(t, resp.OK())
		assert.Equal(t, dserrors.KindExecutionFailure, resp.Kind)
		assert.Contains(t, resp.Error, "connection refused")
		assert.Equal(t, []string{"cckm", "aws", "keys", "list"}, resp.Command)
	})

	t.Run("panic", func(t *testing.T) {
		t.Parallel()

		fake := testutil.NewFakeExecutor().OnPanic("cckm aws keys list", "boom")
		d := dispatch.New(fake, dispatch.Options{}, nil)

		resp := d.Dispatch(context.Background(), dispatch.Request{Action: "aws_keys_list"})

		assert.False(t, resp.OK())
		assert.Equal(t, dserrors.KindExecutionFailure, resp.Kind)
		assert.Contains(t, resp.Error, "boom")
	})
}

func TestDispatchFailedCreateDoesNotRememberScope(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor().OnError("cckm azure vaults create", errors.New("forbidden"))
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_vaults_create",
		Params: provider.Params{
			"vault_name": "v", "subscription_id": "sub-1", "resource_group": "rg", "location": "eu", "connection": "c",
		},
	})

	assert.False(t, resp.OK())
	assert.Equal(t, 0, d.Scopes().Len())
}

func TestDispatchUsesRememberedScope(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor().
		On("cckm azure vaults list", listResult(map[string]any{"id": "vault-uuid", "name": "vault-a::sub-1"}))
	scopes := resolve.NewScopeCache()
	d := dispatch.New(fake, dispatch.Options{Scopes: scopes}, nil)

	create := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_vaults_create",
		Params: provider.Params{
			"vault_name": "vault-a", "subscription_id": "sub-1", "resource_group": "rg", "location": "eu", "connection": "azure-conn",
		},
	})
	require.True(t, create.OK(), create.Error)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_vaults_get",
		Params: provider.Params{"id": "vault-a"},
	})

	require.True(t, resp.OK(), resp.Error)
	assert.Equal(t, []string{"cckm", "azure", "vaults", "get", "--id", "vault-uuid"}, resp.Command)
	assert.Same(t, scopes, d.Scopes())
}

func TestDispatchDomainPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		req            dispatch.Request
		wantDomain     string
		wantAuthDomain string
	}{
		{
			name:           "defaults",
			req:            dispatch.Request{Action: "gcp_keyrings_list"},
			wantDomain:     "default-domain",
			wantAuthDomain: "default-auth",
		},
		{
			name: "params override defaults",
			req: dispatch.Request{
				Action: "gcp_keyrings_list",
				Params: provider.Params{"gcp_params": map[string]any{"domain": "param-domain", "auth_domain": "param-auth"}},
			},
			wantDomain:     "param-domain",
			wantAuthDomain: "param-auth",
		},
		{
			name: "request overrides params",
			req: dispatch.Request{
				Action:     "gcp_keyrings_list",
				Params:     provider.Params{"domain": "param-domain"},
				Domain:     "request-domain",
				AuthDomain: "request-auth",
			},
			wantDomain:     "request-domain",
			wantAuthDomain: "request-auth",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := testutil.NewFakeExecutor()
			d := dispatch.New(fake, dispatch.Options{Domain: "default-domain", AuthDomain: "default-auth"}, nil)

			resp := d.Dispatch(context.Background(), tt.req)
			require.True(t, resp.OK(), resp.Error)

			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantDomain, calls[0].Domain)
			assert.Equal(t, tt.wantAuthDomain, calls[0].AuthDomain)
		})
	}
}

func TestDispatchResolutionDisabled(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{DisableResolution: true}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_keys_get",
		Params: provider.Params{"id": "my-key"},
	})

	require.True(t, resp.OK(), resp.Error)
	assert.Equal(t, []string{"cckm", "azure", "keys", "get", "--id", "my-key"}, resp.Command)
	assert.Len(t, fake.Calls(), 1)
}

func TestDispatchUnresolvedNamePassesThrough(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor().OnError("cckm oci keys list", errors.New("unavailable"))
	d := dispatch.New(fake, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "oci_keys_get",
		Params: provider.Params{"id": "payments"},
	})

	require.True(t, resp.OK(), resp.Error)
	assert.Equal(t, []string{"cckm", "oci", "keys", "get", "--id", "payments"}, resp.Command)
}

func TestBuildDryRun(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	cmd, err := d.Build("aws_keys_get", provider.Params{"aws_keys_params": map[string]any{"id": "alias/payments"}})
	require.NoError(t, err)
	assert.Equal(t, provider.CommandSpec{"cckm", "aws", "keys", "get", "--id", "alias/payments"}, cmd)

	_, err = d.Build("aws_keys_get", nil)
	require.Error(t, err)
	assert.Equal(t, dserrors.KindMissingParameters, dserrors.KindOf(err))

	_, err = d.Build("aws_nothing_here", nil)
	assert.Equal(t, dserrors.KindUnknownAction, dserrors.KindOf(err))

	assert.Empty(t, fake.Calls())
}

func TestListDoesNotResolve(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor()
	d := dispatch.New(fake, dispatch.Options{}, nil)

	_, err := d.List(context.Background(), "azure_keys_list", provider.Params{"key_name": "my-key"})
	require.NoError(t, err)

	_, err = d.List(context.Background(), "azure_keys_get", provider.Params{})
	assert.Equal(t, dserrors.KindMissingParameters, dserrors.KindOf(err))

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"cckm", "azure", "keys", "list", "--key-name", "my-key"}, calls[0].Command)
}

func TestDispatchThroughKsctl(t *testing.T) {
	t.Parallel()

	var ksctl testutil.KsctlMockResponses
	runner := testutil.NewMockCommandExecutor()
	runner.StrictMode = true
	runner.AddResponse("ksctl cckm azure keys list", ksctl.Resources(map[string]any{"id": keyUUID, "name": "my-key"}))
	runner.AddResponse("ksctl cckm azure keys get --id "+keyUUID, ksctl.Resource(map[string]any{"id": keyUUID, "name": "my-key", "kty": "RSA"}))

	logger := testutil.NewTestLogger(t)
	executor := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{ConfigFile: "/etc/ksctl.yaml"}, runner, logger.Logger())
	d := dispatch.New(executor, dispatch.Options{Domain: "tenant-a"}, logger.Logger())

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "azure_keys_get",
		Params: provider.Params{"id": "my-key"},
	})

	require.True(t, resp.OK(), resp.Error)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "RSA", data["kty"])

	calls := runner.GetCalls("ksctl")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{
		"cckm", "azure", "keys", "get", "--id", keyUUID,
		"--domain", "tenant-a", "--configfile", "/etc/ksctl.yaml",
	}, calls[1].Args)

	logger.AssertContains(t, "Running ksctl")

	// No key named "other" exists, so the name reaches ksctl unchanged.
	resp = d.Dispatch(context.Background(), dispatch.Request{Action: "azure_keys_get", Params: provider.Params{"id": "other"}})
	assert.False(t, resp.OK())
	assert.Equal(t, []string{"cckm", "azure", "keys", "get", "--id", "other"}, resp.Command)
	assert.Contains(t, resp.Error, "no response configured")
}

func TestDispatchThroughKsctlNotFound(t *testing.T) {
	t.Parallel()

	var ksctl testutil.KsctlMockResponses
	runner := testutil.NewMockCommandExecutor()
	runner.AddResponse("ksctl cckm gcp keys get", ksctl.NotFound(keyUUID))

	executor := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{}, runner, nil)
	d := dispatch.New(executor, dispatch.Options{}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action: "gcp_keys_get",
		Params: provider.Params{"id": keyUUID},
	})

	assert.False(t, resp.OK())
	assert.Equal(t, dserrors.KindExecutionFailure, resp.Kind)
	assert.Contains(t, resp.Error, "NCERRResourceNotFound")
	assert.Equal(t, 1, runner.CallCount(), "uuids are never resolved")
}

func TestDispatchResolutionUsesRequestDomain(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExecutor().
		On("cckm gcp keys list", listResult(map[string]any{"id": keyUUID, "name": "payments"}))
	d := dispatch.New(fake, dispatch.Options{Domain: "default-domain"}, nil)

	resp := d.Dispatch(context.Background(), dispatch.Request{
		Action:     "gcp_keys_get",
		Params:     provider.Params{"id": "payments"},
		Domain:     "tenant-b",
		AuthDomain: "root",
	})
	require.True(t, resp.OK(), resp.Error)

	for _, call := range fake.Calls() {
		assert.Equal(t, "tenant-b", call.Domain, call.Command)
		assert.Equal(t, "root", call.AuthDomain, call.Command)
	}
	assert.Len(t, fake.Commands("cckm", "gcp", "keys", "list"), 1)
}

func TestDispatchPolicy(t *testing.T) {
	t.Parallel()

	enforcer := policy.NewPolicyEnforcer(&policy.PolicyConfig{
		BlockedActions: []string{"*_hard_delete"},
		DomainRules: map[string]*policy.DomainPolicy{
			"prod": {ReadOnly: true},
		},
	})

	tests := []struct {
		name    string
		req     dispatch.Request
		allowed bool
	}{
		{"blocked globally", dispatch.Request{Action: "azure_keys_hard_delete", Params: provider.Params{"id": keyUUID}}, false},
		{"read-only domain write", dispatch.Request{Action: "aws_keys_enable", Params: provider.Params{"id": keyUUID}, Domain: "prod"}, false},
		{"read-only domain from params", dispatch.Request{Action: "aws_keys_enable", Params: provider.Params{"id": keyUUID, "domain": "prod"}}, false},
		{"read-only domain read", dispatch.Request{Action: "aws_keys_get", Params: provider.Params{"id": keyUUID}, Domain: "prod"}, true},
		{"other domain write", dispatch.Request{Action: "aws_keys_enable", Params: provider.Params{"id": keyUUID}, Domain: "dev"}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := testutil.NewFakeExecutor()
			d := dispatch.New(fake, dispatch.Options{Policy: enforcer}, nil)

			resp := d.Dispatch(context.Background(), tt.req)
			if tt.allowed {
				assert.True(t, resp.OK(), resp.Error)
				assert.Len(t, fake.Calls(), 1)
				return
			}
			assert.False(t, resp.OK())
			assert.Equal(t, dserrors.KindPolicyViolation, resp.Kind)
			assert.Empty(t, fake.Calls())
		})
	}
}
