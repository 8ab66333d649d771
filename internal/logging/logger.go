package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured logging with redaction support
type Logger struct {
	zl    zerolog.Logger
	debug bool
}

// New creates a new logger instance writing human-readable output to stderr
func New(debug, noColor bool) *Logger {
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
	}
	return newLogger(out, debug)
}

// NewWithWriter creates a logger that writes JSON lines to w
func NewWithWriter(w io.Writer, debug bool) *Logger {
	return newLogger(w, debug)
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func newLogger(w io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return &Logger{
		zl:    zerolog.New(w).Level(level).With().Timestamp().Logger(),
		debug: debug,
	}
}

// With returns a child logger that adds key=value to every entry
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		zl:    l.zl.With().Interface(key, value).Logger(),
		debug: l.debug,
	}
}

// IsDebug reports whether debug output is enabled
func (l *Logger) IsDebug() bool {
	return l.debug
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// MarshalText keeps structured fields redacted as well
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Redact replaces sensitive values in a string with [REDACTED]
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}

// sensitiveParams lists parameter names whose values never reach the logs.
var sensitiveParams = map[string]bool{
	"value":    true,
	"password": true,
}

// RedactCommand renders a command for logging, hiding the values of
// sensitive flags.
func RedactCommand(tokens []string) string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	for i := 0; i < len(out)-1; i++ {
		name := strings.TrimPrefix(out[i], "--")
		if name != out[i] && sensitiveParams[strings.ReplaceAll(name, "-", "_")] {
			out[i+1] = Secret(out[i+1]).String()
			i++
		}
	}
	return strings.Join(out, " ")
}
