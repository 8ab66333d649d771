package policy

import (
	"fmt"
	"path"
	"strings"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/pkg/provider"
)

// PolicyConfig restricts which actions cckmops will run
type PolicyConfig struct {
	// Global policies
	AllowedProviders []string `yaml:"allowed_providers,omitempty"` // Whitelist of providers
	BlockedProviders []string `yaml:"blocked_providers,omitempty"` // Blacklist of providers
	BlockedActions   []string `yaml:"blocked_actions,omitempty"`   // Action globs, e.g. "*_hard_delete"

	// Per CipherTrust domain restrictions, applied on top of the global ones
	DomainRules map[string]*DomainPolicy `yaml:"domain_rules,omitempty"`
}

// DomainPolicy defines per-domain restrictions
type DomainPolicy struct {
	AllowedProviders []string `yaml:"allowed_providers,omitempty"`
	BlockedProviders []string `yaml:"blocked_providers,omitempty"`
	BlockedActions   []string `yaml:"blocked_actions,omitempty"`
	ReadOnly         bool     `yaml:"read_only,omitempty"` // Only list, get and status verbs
}

// readOnlyVerbs never change CCKM state.
var readOnlyVerbs = map[string]bool{
	"list":   true,
	"get":    true,
	"status": true,
}

// PolicyEnforcer validates actions against configured policies
type PolicyEnforcer struct {
	config *PolicyConfig
}

// NewPolicyEnforcer creates a new policy enforcer
func NewPolicyEnforcer(config *PolicyConfig) *PolicyEnforcer {
	if config == nil {
		config = &PolicyConfig{} // Empty config = no restrictions
	}
	return &PolicyEnforcer{config: config}
}

// Validate checks the patterns of the configuration.
func (pe *PolicyEnforcer) Validate() error {
	patterns := append([]string{}, pe.config.BlockedActions...)
	for _, rule := range pe.config.DomainRules {
		if rule != nil {
			patterns = append(patterns, rule.BlockedActions...)
		}
	}
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return dserrors.ConfigError{
				Field:      "policies.blocked_actions",
				Value:      pattern,
				Message:    "invalid action pattern",
				Suggestion: "Use shell globs such as '*_hard_delete' or 'aws_keys_*'",
			}
		}
	}
	return nil
}

// ValidateAction checks whether action may run in domain. An empty domain
// only applies the global rules.
func (pe *PolicyEnforcer) ValidateAction(action provider.Action, domain string) error {
	if err := pe.validateProvider(action, pe.config.AllowedProviders, pe.config.BlockedProviders, ""); err != nil {
		return err
	}
	if err := pe.validatePatterns(action, pe.config.BlockedActions, ""); err != nil {
		return err
	}

	rule, exists := pe.config.DomainRules[domain]
	if domain == "" || !exists || rule == nil {
		return nil
	}
	if err := pe.validateProvider(action, rule.AllowedProviders, rule.BlockedProviders, domain); err != nil {
		return err
	}
	if err := pe.validatePatterns(action, rule.BlockedActions, domain); err != nil {
		return err
	}
	if rule.ReadOnly && !readOnlyVerbs[action.Verb()] {
		return denied(action, fmt.Sprintf("domain '%s' is read-only", domain),
			"Only list, get and status actions are allowed in this domain")
	}
	return nil
}

func (pe *PolicyEnforcer) validateProvider(action provider.Action, allowed, blocked []string, domain string) error {
	name := string(action.Provider)
	scope := scopeSuffix(domain)

	// Check blocked providers first
	for _, b := range blocked {
		if strings.EqualFold(b, name) {
			return denied(action, fmt.Sprintf("provider '%s' is blocked by policy%s", name, scope),
				"Use an allowed provider or update your policy configuration")
		}
	}

	// Check allowed providers (if specified)
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(a, name) {
			return nil
		}
	}
	return denied(action, fmt.Sprintf("provider '%s' is not in allowed list%s", name, scope),
		fmt.Sprintf("Allowed providers: %s", strings.Join(allowed, ", ")))
}

func (pe *PolicyEnforcer) validatePatterns(action provider.Action, patterns []string, domain string) error {
	name := action.String()
	for _, pattern := range patterns {
		if matched, _ := path.Match(pattern, name); matched {
			return denied(action, fmt.Sprintf("action matches blocked pattern '%s'%s", pattern, scopeSuffix(domain)),
				"Run it with a policy that allows it or ask your CCKM administrator")
		}
	}
	return nil
}

func scopeSuffix(domain string) string {
	if domain == "" {
		return ""
	}
	return fmt.Sprintf(" for domain '%s'", domain)
}

func denied(action provider.Action, reason, suggestion string) error {
	return &dserrors.ActionError{
		Kind:    dserrors.KindPolicyViolation,
		Action:  action.String(),
		Message: fmt.Sprintf("%s denied: %s", action, reason),
		Err: dserrors.UserError{
			Message:    reason,
			Suggestion: suggestion,
		},
	}
}
