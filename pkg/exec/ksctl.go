package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/logging"
)

// DefaultKsctlTimeout bounds a single ksctl invocation when no timeout is configured.
const DefaultKsctlTimeout = 60 * time.Second

// KsctlConfig configures the ksctl-backed executor.
type KsctlConfig struct {
	// Binary is the ksctl executable name or path.
	Binary string
	// ConfigFile is passed as --configfile when set.
	ConfigFile string
	// Timeout bounds each invocation.
	Timeout time.Duration
	// Retries is how often a read-only command is repeated after a
	// transient failure. Commands that change state never retry.
	Retries int
	// RetryDelay separates retry attempts.
	RetryDelay time.Duration
}

// DefaultRetryDelay separates retries when no delay is configured.
const DefaultRetryDelay = 500 * time.Millisecond

// readOnlyVerbs are the cckm verbs that are safe to repeat.
var readOnlyVerbs = map[string]bool{
	"list":   true,
	"get":    true,
	"status": true,
}

type noRetryKey struct{}

// WithoutRetries marks ctx so that executors run each command once.
func WithoutRetries(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retriesDisabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(noRetryKey{}).(bool)
	return disabled
}

// KsctlExecutor runs cckm commands with the ksctl CLI.
type KsctlExecutor struct {
	config KsctlConfig
	runner CommandExecutor
	logger *logging.Logger
}

// NewKsctlExecutor creates an executor that shells out to ksctl.
func NewKsctlExecutor(config KsctlConfig, logger *logging.Logger) *KsctlExecutor {
	return NewKsctlExecutorWithRunner(config, DefaultExecutor(), logger)
}

// NewKsctlExecutorWithRunner creates a ksctl executor with a custom command runner.
// This is primarily for testing, allowing command execution to be mocked.
func NewKsctlExecutorWithRunner(config KsctlConfig, runner CommandExecutor, logger *logging.Logger) *KsctlExecutor {
	if config.Binary == "" {
		config.Binary = "ksctl"
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultKsctlTimeout
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &KsctlExecutor{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Args returns the full ksctl argument list for command.
func (k *KsctlExecutor) Args(command []string, domain, authDomain string) []string {
	args := make([]string, 0, len(command)+6)
	args = append(args, command...)
	if domain != "" {
		args = append(args, "--domain", domain)
	}
	if authDomain != "" {
		args = append(args, "--auth-domain", authDomain)
	}
	if k.config.ConfigFile != "" {
		args = append(args, "--configfile", k.config.ConfigFile)
	}
	return args
}

// Execute runs ksctl and decodes its JSON output into Result["data"].
func (k *KsctlExecutor) Execute(ctx context.Context, command []string, domain, authDomain string) (Result, error) {
	attempts := 1
	if isReadOnly(command) && k.config.Retries > 0 && !retriesDisabled(ctx) {
		attempts += k.config.Retries
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var result Result
		result, err = k.run(ctx, command, domain, authDomain)
		if err == nil {
			return result, nil
		}
		if attempt == attempts || !dserrors.IsRetryable(err) {
			break
		}
		k.logger.Debug("Retrying %s after transient failure (attempt %d/%d): %v",
			logging.RedactCommand(command), attempt+1, attempts, err)
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(k.config.RetryDelay):
		}
	}
	return nil, err
}

func (k *KsctlExecutor) run(ctx context.Context, command []string, domain, authDomain string) (Result, error) {
	args := k.Args(command, domain, authDomain)

	ctx, cancel := context.WithTimeout(ctx, k.config.Timeout)
	defer cancel()

	k.logger.Debug("Running %s %s", k.config.Binary, logging.RedactCommand(args))

	stdout, stderr, err := k.runner.Execute(ctx, k.config.Binary, args...)
	if err != nil {
		return nil, k.wrapError(ctx, command, stderr, err)
	}

	result := Result{"stdout": string(stdout)}
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		var data any
		if err := json.Unmarshal(trimmed, &data); err == nil {
			result["data"] = data
		}
	}
	return result, nil
}

// isReadOnly reports whether command is "cckm <provider> <resource> <verb>"
// with a verb that does not change state.
func isReadOnly(command []string) bool {
	return len(command) >= 4 && readOnlyVerbs[command[3]]
}

func (k *KsctlExecutor) wrapError(ctx context.Context, command []string, stderr []byte, err error) error {
	if errors.Is(err, osexec.ErrNotFound) {
		return dserrors.WrapCommandNotFound(k.config.Binary, err)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dserrors.UserError{
			Message:    "ksctl command timed out",
			Details:    fmt.Sprintf("Operation exceeded %s timeout", k.config.Timeout),
			Suggestion: "Increase ksctl.timeout_ms in cckmops.yaml or check connectivity to CipherTrust Manager",
			Err:        err,
		}
	}

	exitCode := 0
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	message := strings.TrimSpace(string(stderr))
	if message == "" {
		message = err.Error()
	}

	return dserrors.CommandError{
		Command:  k.config.Binary + " " + logging.RedactCommand(command),
		ExitCode: exitCode,
		Message:  message,
		Err:      err,
	}
}
