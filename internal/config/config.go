package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/logging"
	"github.com/systmms/cckmops/internal/metrics"
	"github.com/systmms/cckmops/internal/policy"
	"github.com/systmms/cckmops/pkg/exec"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "cckmops.yaml"

// Environment variables that override the file.
const (
	EnvDomain      = "CCKMOPS_DOMAIN"
	EnvAuthDomain  = "CCKMOPS_AUTH_DOMAIN"
	EnvKsctlBinary = "CCKMOPS_KSCTL_BINARY"
	EnvKsctlConfig = "CCKMOPS_KSCTL_CONFIG"
)

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	EnvFiles   []string // .env files loaded before overrides; "./.env" when empty
	Definition *Definition
}

// Definition represents the cckmops.yaml structure
type Definition struct {
	Version    int              `yaml:"version"`
	Ksctl      KsctlConfig      `yaml:"ksctl"`
	Domain     string           `yaml:"domain,omitempty"`
	AuthDomain string           `yaml:"auth_domain,omitempty"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Batch      BatchConfig      `yaml:"batch"`
	Metrics    MetricsConfig    `yaml:"metrics"`

	Policies *policy.PolicyConfig `yaml:"policies,omitempty"`
}

// KsctlConfig configures the ksctl CLI used to reach CipherTrust Manager
type KsctlConfig struct {
	Binary     string `yaml:"binary"`
	ConfigFile string `yaml:"config_file,omitempty"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	Retries    int    `yaml:"retries"` // Extra attempts for list, get and status
}

// ResolutionConfig controls name-to-id resolution
type ResolutionConfig struct {
	Enabled   bool `yaml:"enabled"`
	TimeoutMs int  `yaml:"timeout_ms"`
}

// BatchConfig controls the batch command
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Definition {
	return &Definition{
		Version: 0,
		Ksctl: KsctlConfig{
			Binary:    "ksctl",
			TimeoutMs: int(exec.DefaultKsctlTimeout / time.Millisecond),
			Retries:   1,
		},
		Resolution: ResolutionConfig{
			Enabled:   true,
			TimeoutMs: 30000,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Load reads and parses the cckmops.yaml file. The file must exist.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create cckmops.yaml or pass --config with the right path",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def := Default()
	if err := yaml.Unmarshal(data, def); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	return c.finish(def)
}

// LoadOrDefault loads the file when it exists and falls back to the defaults
// otherwise. Environment overrides apply in both cases.
func (c *Config) LoadOrDefault() error {
	if c.Path != "" {
		if _, err := os.Stat(c.Path); err == nil {
			return c.Load()
		}
	}
	c.logger().Debug("No configuration file at %q, using defaults", c.Path)
	return c.finish(Default())
}

func (c *Config) finish(def *Definition) error {
	c.loadEnvFiles()
	def.applyEnv()
	if err := def.Validate(); err != nil {
		return err
	}
	c.Definition = def
	return nil
}

// loadEnvFiles loads .env files without overriding variables already set.
func (c *Config) loadEnvFiles() {
	if len(c.EnvFiles) == 0 {
		// A missing ./.env is normal
		_ = godotenv.Load()
		return
	}
	if err := godotenv.Load(c.EnvFiles...); err != nil {
		c.logger().Warn("Failed to load env file: %v", err)
	}
}

func (c *Config) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.Nop()
	}
	return c.Logger
}

func (d *Definition) applyEnv() {
	override := func(target *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}
	override(&d.Domain, EnvDomain)
	override(&d.AuthDomain, EnvAuthDomain)
	override(&d.Ksctl.Binary, EnvKsctlBinary)
	override(&d.Ksctl.ConfigFile, EnvKsctlConfig)
}

// Validate checks every field and reports the first problem found.
func (d *Definition) Validate() error {
	if d.Version != 0 {
		return dserrors.ConfigError{
			Field:      "version",
			Value:      d.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your cckmops.yaml file",
		}
	}
	if strings.TrimSpace(d.Ksctl.Binary) == "" {
		return dserrors.ConfigError{
			Field:      "ksctl.binary",
			Message:    "ksctl binary must not be empty",
			Suggestion: fmt.Sprintf("Set ksctl.binary or %s", EnvKsctlBinary),
		}
	}
	if d.Ksctl.TimeoutMs <= 0 {
		return positive("ksctl.timeout_ms", d.Ksctl.TimeoutMs)
	}
	if d.Ksctl.Retries < 0 {
		return dserrors.ConfigError{
			Field:      "ksctl.retries",
			Value:      d.Ksctl.Retries,
			Message:    "retries must not be negative",
			Suggestion: "Use 0 to disable retries",
		}
	}
	if d.Resolution.TimeoutMs <= 0 {
		return positive("resolution.timeout_ms", d.Resolution.TimeoutMs)
	}
	if d.Batch.Concurrency <= 0 {
		return positive("batch.concurrency", d.Batch.Concurrency)
	}
	if d.Metrics.Port <= 0 || d.Metrics.Port > 65535 {
		return dserrors.ConfigError{
			Field:      "metrics.port",
			Value:      d.Metrics.Port,
			Message:    "port out of range",
			Suggestion: "Use a port between 1 and 65535",
		}
	}
	if !strings.HasPrefix(d.Metrics.Path, "/") {
		return dserrors.ConfigError{
			Field:      "metrics.path",
			Value:      d.Metrics.Path,
			Message:    "metrics path must start with '/'",
			Suggestion: "Use a path such as /metrics",
		}
	}
	return d.PolicyEnforcer().Validate()
}

func positive(field string, value int) error {
	return dserrors.ConfigError{
		Field:      field,
		Value:      value,
		Message:    "must be greater than zero",
		Suggestion: "Remove the field to use the default",
	}
}

// KsctlTimeout returns the per-invocation ksctl timeout.
func (d *Definition) KsctlTimeout() time.Duration {
	return time.Duration(d.Ksctl.TimeoutMs) * time.Millisecond
}

// ResolutionTimeout returns the timeout of each resolver list call.
func (d *Definition) ResolutionTimeout() time.Duration {
	return time.Duration(d.Resolution.TimeoutMs) * time.Millisecond
}

// ExecutorConfig returns the ksctl executor settings.
func (d *Definition) ExecutorConfig() exec.KsctlConfig {
	return exec.KsctlConfig{
		Binary:     d.Ksctl.Binary,
		ConfigFile: d.Ksctl.ConfigFile,
		Timeout:    d.KsctlTimeout(),
		Retries:    d.Ksctl.Retries,
	}
}

// PolicyEnforcer returns the enforcer for the configured policies. Without a
// policies section every action is allowed.
func (d *Definition) PolicyEnforcer() *policy.PolicyEnforcer {
	return policy.NewPolicyEnforcer(d.Policies)
}

// MetricsServerConfig returns the metrics server settings.
func (d *Definition) MetricsServerConfig() metrics.ServerConfig {
	cfg := metrics.DefaultServerConfig()
	cfg.Enabled = d.Metrics.Enabled
	cfg.Port = d.Metrics.Port
	cfg.Path = d.Metrics.Path
	return cfg
}
