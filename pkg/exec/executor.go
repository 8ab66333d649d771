// Package exec provides abstractions for command execution.
// This package enables testable code by allowing CLI commands to be mocked.
package exec

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandExecutor defines an interface for executing shell commands.
// This abstraction allows for mocking CLI tool behavior in tests.
type CommandExecutor interface {
	// Execute runs a command with the given context and arguments.
	// Returns stdout, stderr, and any error that occurred.
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor executes actual shell commands using os/exec.
// This is the production implementation.
type RealCommandExecutor struct{}

// Execute runs an actual shell command.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor returns the standard production executor.
// This is used as the default when no executor is injected.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// Executor runs a prebuilt cckm command.
//
// domain and authDomain are optional scope hints; empty means "use the
// tool's default". Implementations own timeouts and cancellation.
type Executor interface {
	Execute(ctx context.Context, command []string, domain, authDomain string) (Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, command []string, domain, authDomain string) (Result, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, command []string, domain, authDomain string) (Result, error) {
	return f(ctx, command, domain, authDomain)
}

// Result is the structured outcome of one execution. It exposes at least
// "data" (decoded output) or "stdout" (raw output).
type Result map[string]any

// Data returns the decoded payload if there is one.
func (r Result) Data() (any, bool) {
	v, ok := r["data"]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Stdout returns the raw output.
func (r Result) Stdout() string {
	s, _ := r["stdout"].(string)
	return s
}

// Payload prefers the decoded data and falls back to raw output.
func (r Result) Payload() any {
	if v, ok := r.Data(); ok {
		return v
	}
	return r.Stdout()
}
