package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/pkg/provider"
)

func action(p provider.Name, group, verb string) provider.Action {
	return provider.Action{Provider: p, Group: group, Operation: group + "_" + verb}
}

func TestNewPolicyEnforcer(t *testing.T) {
	t.Parallel()

	t.Run("creates_enforcer_with_config", func(t *testing.T) {
		t.Parallel()
		config := &PolicyConfig{
			AllowedProviders: []string{"azure", "aws"},
		}
		enforcer := NewPolicyEnforcer(config)
		assert.NotNil(t, enforcer)
		assert.Equal(t, config, enforcer.config)
	})

	t.Run("creates_enforcer_with_nil_config", func(t *testing.T) {
		t.Parallel()
		enforcer := NewPolicyEnforcer(nil)
		assert.NotNil(t, enforcer)
		assert.NotNil(t, enforcer.config)
		assert.NoError(t, enforcer.ValidateAction(action(provider.OCI, "keys", "destroy"), "root"))
	})
}

func TestPolicyEnforcer_Providers(t *testing.T) {
	t.Parallel()

	t.Run("blocks_provider_in_blocked_list", func(t *testing.T) {
		t.Parallel()
		enforcer := NewPolicyEnforcer(&PolicyConfig{BlockedProviders: []string{"oci"}})

		err := enforcer.ValidateAction(action(provider.OCI, "keys", "list"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked by policy")
		assert.Equal(t, dserrors.KindPolicyViolation, dserrors.KindOf(err))
	})

	t.Run("blocks_provider_case_insensitive", func(t *testing.T) {
		t.Parallel()
		enforcer := NewPolicyEnforcer(&PolicyConfig{BlockedProviders: []string{"AWS"}})

		assert.Error(t, enforcer.ValidateAction(action(provider.AWS, "keys", "list"), ""))
	})

	t.Run("allows_only_listed_providers", func(t *testing.T) {
		t.Parallel()
		enforcer := NewPolicyEnforcer(&PolicyConfig{AllowedProviders: []string{"azure", "gcp"}})

		assert.NoError(t, enforcer.ValidateAction(action(provider.GCP, "keyrings", "list"), ""))

		err := enforcer.ValidateAction(action(provider.AWS, "keys", "list"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in allowed list")
	})

	t.Run("blocked_wins_over_allowed", func(t *testing.T) {
		t.Parallel()
		enforcer := NewPolicyEnforcer(&PolicyConfig{
			AllowedProviders: []string{"azure"},
			BlockedProviders: []string{"azure"},
		})

		err := enforcer.ValidateAction(action(provider.Azure, "keys", "get"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked by policy")
	})
}

func TestPolicyEnforcer_BlockedActions(t *testing.T) {
	t.Parallel()

	enforcer := NewPolicyEnforcer(&PolicyConfig{
		BlockedActions: []string{"*_hard_delete", "aws_keys_schedule_deletion", "oci_*_destroy"},
	})

	tests := []struct {
		name    string
		action  provider.Action
		blocked bool
	}{
		{"azure hard delete", action(provider.Azure, "keys", "hard_delete"), true},
		{"azure secret hard delete", action(provider.Azure, "secrets", "hard_delete"), true},
		{"aws schedule deletion", action(provider.AWS, "keys", "schedule_deletion"), true},
		{"oci destroy", action(provider.OCI, "keys", "destroy"), true},
		{"azure soft delete", action(provider.Azure, "keys", "soft_delete"), false},
		{"aws cancel deletion", action(provider.AWS, "keys", "cancel_deletion"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := enforcer.ValidateAction(tt.action, "")
			if tt.blocked {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "matches blocked pattern")
				assert.Contains(t, err.Error(), tt.action.String()+" denied")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicyEnforcer_DomainRules(t *testing.T) {
	t.Parallel()

	enforcer := NewPolicyEnforcer(&PolicyConfig{
		DomainRules: map[string]*DomainPolicy{
			"prod": {
				ReadOnly: true,
			},
			"finance": {
				AllowedProviders: []string{"azure"},
				BlockedActions:   []string{"azure_vaults_*"},
			},
			"empty": nil,
		},
	})

	t.Run("read_only_domain_allows_reads", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, enforcer.ValidateAction(action(provider.AWS, "keys", "list"), "prod"))
		assert.NoError(t, enforcer.ValidateAction(action(provider.AWS, "keys", "get"), "prod"))
		assert.NoError(t, enforcer.ValidateAction(action(provider.AWS, "sync", "status"), "prod"))
	})

	t.Run("read_only_domain_blocks_writes", func(t *testing.T) {
		t.Parallel()
		err := enforcer.ValidateAction(action(provider.AWS, "keys", "create"), "prod")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "domain 'prod' is read-only")
	})

	t.Run("domain_provider_and_patterns", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, enforcer.ValidateAction(action(provider.Azure, "keys", "create"), "finance"))

		err := enforcer.ValidateAction(action(provider.GCP, "keys", "list"), "finance")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "for domain 'finance'")

		err = enforcer.ValidateAction(action(provider.Azure, "vaults", "delete"), "finance")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "matches blocked pattern 'azure_vaults_*' for domain 'finance'")
	})

	t.Run("other_domains_unrestricted", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, enforcer.ValidateAction(action(provider.GCP, "keys", "destroy"), "dev"))
		assert.NoError(t, enforcer.ValidateAction(action(provider.GCP, "keys", "destroy"), "empty"))
		assert.NoError(t, enforcer.ValidateAction(action(provider.GCP, "keys", "destroy"), ""))
	})
}

func TestPolicyEnforcer_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewPolicyEnforcer(nil).Validate())
	assert.NoError(t, NewPolicyEnforcer(&PolicyConfig{BlockedActions: []string{"*_hard_delete"}}).Validate())

	err := NewPolicyEnforcer(&PolicyConfig{
		DomainRules: map[string]*DomainPolicy{"prod": {BlockedActions: []string{"aws_[keys"}}},
	}).Validate()
	require.Error(t, err)

	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "aws_[keys", cfgErr.Value)
}
