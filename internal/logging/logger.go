package logging

import (
	"fmt"
	"os"
	"strings"
)

// Logger provides leveled logging to stderr with redaction support.
// When stderr is not attached to a terminal (the cron case), warnings and
// errors are mirrored to the system log so failures of unattended runs are
// not lost.
type Logger struct {
	debug   bool
	noColor bool
	system  systemLogger
}

// systemLogger mirrors messages to the platform system log.
type systemLogger interface {
	Err(msg string) error
	Warning(msg string) error
	Close() error
}

// New creates a new logger instance. The system log mirror is attached only
// when stderr is not a terminal.
func New(debug, noColor bool) *Logger {
	l := &Logger{
		debug:   debug,
		noColor: noColor,
	}
	if !stderrIsTerminal() {
		// Best effort: unattended hosts without a syslog daemon still
		// get stderr output.
		if sys, err := openSystemLog(); err == nil {
			l.system = sys
		}
	}
	return l
}

func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "✓ %s\n", msg)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", msg)
	}
	if l.system != nil {
		_ = l.system.Warning(msg)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "✗ %s\n", msg)
	}
	if l.system != nil {
		_ = l.system.Err(msg)
	}
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "\033[36m[DEBUG]\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
	}
}

// Close releases the system log connection, if one was opened.
func (l *Logger) Close() {
	if l.system != nil {
		_ = l.system.Close()
		l.system = nil
	}
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
