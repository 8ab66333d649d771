package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
	Err        error
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// Kind classifies failures of a single action request.
type Kind string

const (
	KindUnknownAction        Kind = "UnknownAction"
	KindMissingParameters    Kind = "MissingParameters"
	KindInvalidParameters    Kind = "InvalidParameters"
	KindUnsupportedOperation Kind = "UnsupportedOperation"
	KindMissingParameter     Kind = "MissingParameter"
	KindResolutionFailure    Kind = "ResolutionFailure"
	KindExecutionFailure     Kind = "ExecutionFailure"
	KindPolicyViolation      Kind = "PolicyViolation"
)

// ActionError is returned by the registry, validator, builders and
// dispatcher. Params names the offending parameters when there are any.
type ActionError struct {
	Kind    Kind
	Action  string
	Params  []string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindUnknownAction:
		return fmt.Sprintf("Unknown action: %s", e.Action)
	case KindMissingParameters:
		return fmt.Sprintf("Missing required parameters for %s: [%s]", e.Action, strings.Join(e.Params, ", "))
	case KindInvalidParameters:
		return fmt.Sprintf("Invalid parameters for %s: %v", e.Action, e.Err)
	case KindUnsupportedOperation:
		return fmt.Sprintf("Unsupported operation: %s", e.Action)
	case KindMissingParameter:
		return fmt.Sprintf("%s requires parameter(s): %s", e.Action, strings.Join(e.Params, ", "))
	case KindExecutionFailure:
		if e.Err != nil {
			return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
		}
		return fmt.Sprintf("%s failed", e.Action)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Action, e.Err)
	}
	return string(e.Kind) + ": " + e.Action
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// UnknownAction builds a KindUnknownAction error.
func UnknownAction(action string) error {
	return &ActionError{Kind: KindUnknownAction, Action: action}
}

// MissingParameters builds a KindMissingParameters error naming every absent parameter.
func MissingParameters(action string, missing []string) error {
	return &ActionError{Kind: KindMissingParameters, Action: action, Params: missing}
}

// UnsupportedOperation builds a KindUnsupportedOperation error.
func UnsupportedOperation(action string) error {
	return &ActionError{Kind: KindUnsupportedOperation, Action: action}
}

// MissingParameter builds a KindMissingParameter error for a builder-internal requirement.
func MissingParameter(action string, params ...string) error {
	return &ActionError{Kind: KindMissingParameter, Action: action, Params: params}
}

// KindOf returns the kind of the first ActionError in err's chain, or "".
func KindOf(err error) Kind {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// ProviderError enhances ksctl errors with context
func ProviderError(provider string, operation string, err error) error {
	suggestion := getProviderSuggestion(provider, err)

	return UserError{
		Message:    fmt.Sprintf("%s provider error during %s", provider, operation),
		Details:    err.Error(),
		Suggestion: suggestion,
		Err:        err,
	}
}

// getProviderSuggestion returns helpful suggestions based on provider and error
func getProviderSuggestion(provider string, err error) string {
	errStr := err.Error()

	switch provider {
	case "azure":
		if strings.Contains(errStr, "subscription") {
			return "List subscriptions with the azure_subscriptions_list action and pass subscription_id"
		}
	case "aws":
		if strings.Contains(errStr, "AccessDenied") {
			return "Check the IAM permissions of the AWS connection used by the KMS"
		}
	case "gcp":
		if strings.Contains(errStr, "PERMISSION_DENIED") {
			return "Check the service account roles of the GCP connection"
		}
	case "oci":
		if strings.Contains(errStr, "NotAuthorizedOrNotFound") {
			return "Check the compartment policies of the OCI connection"
		}
	}

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "Unauthorized") {
		return "Run 'ksctl login' or check the ksctl configuration file"
	}
	if strings.Contains(errStr, "404") || strings.Contains(errStr, "Resource not found") {
		return "Verify the resource id. List resources with the matching *_list action"
	}
	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check the CipherTrust Manager URL in the ksctl configuration"
	}

	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"ksctl": "Download ksctl from your CipherTrust Manager (Resources > ksctl) and put it in your PATH",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
		Err:        err,
	}
}

// IsRetryable checks if an error is retryable. Action errors are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if KindOf(err) != "" {
		return false
	}

	errStr := err.Error()
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"rate limit",
		"throttling",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}

	return false
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}
	if _, ok := err.(CommandError); ok {
		return err
	}
	if KindOf(err) != "" {
		return err
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "json:") {
		return ConfigError{
			Message:    "Invalid JSON format",
			Suggestion: "Validate the parameters document, e.g. with 'jq . params.json'",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
