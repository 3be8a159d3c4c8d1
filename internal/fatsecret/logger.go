package fatsecret

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ANSI escape sequences for colored terminal output.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

// Logger writes formatted, optionally colored log lines. A single instance is
// created in cmd and shared by the server, flow manager and API client. All
// methods are safe on a nil receiver so optional logging callers don't have
// to guard every call.
type Logger struct {
	verbose   bool
	useColor  bool
	traceHTTP bool
	writer    io.Writer
}

// NewLogger creates a logger writing to stderr. Stdout is reserved for the
// MCP stdio transport.
func NewLogger(verbose, useColor, traceHTTP bool) *Logger {
	return NewLoggerWithWriter(verbose, useColor, traceHTTP, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to the given writer.
func NewLoggerWithWriter(verbose, useColor, traceHTTP bool, w io.Writer) *Logger {
	return &Logger{
		verbose:   verbose,
		useColor:  useColor,
		traceHTTP: traceHTTP,
		writer:    w,
	}
}

// SetVerbose toggles verbose output at runtime.
func (l *Logger) SetVerbose(verbose bool) {
	if l == nil {
		return
	}
	l.verbose = verbose
}

// SetWriter redirects subsequent output to w.
func (l *Logger) SetWriter(w io.Writer) {
	if l == nil {
		return
	}
	l.writer = w
}

func (l *Logger) logf(color, prefix, format string, args ...interface{}) {
	if l == nil || l.writer == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.useColor && color != "" {
		fmt.Fprintf(l.writer, "%s%s%s%s\n", color, prefix, msg, ansiReset)
	} else {
		fmt.Fprintf(l.writer, "%s%s\n", prefix, msg)
	}
}

// Info logs a general informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf("", "", format, args...)
}

// InfoVerbose logs an informational message only when verbose mode is on.
func (l *Logger) InfoVerbose(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.Info(format, args...)
}

// Success logs a message indicating a completed operation.
func (l *Logger) Success(format string, args ...interface{}) {
	l.logf(ansiGreen, "✓ ", format, args...)
}

// Warning logs a non-fatal problem.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logf(ansiYellow, "Warning: ", format, args...)
}

// WarningVerbose logs a warning only when verbose mode is on.
func (l *Logger) WarningVerbose(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.Warning(format, args...)
}

// Error logs a failure.
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(ansiRed, "Error: ", format, args...)
}

// Debug logs diagnostic detail, shown only in verbose mode.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.logf(ansiGray, "", format, args...)
}

// Request traces an outgoing API call when HTTP tracing is enabled. Callers
// pass application parameters only; OAuth credentials never reach the log.
func (l *Logger) Request(method string, params interface{}) {
	if l == nil || !l.traceHTTP {
		return
	}
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", params))
	}
	l.logf(ansiCyan, "→ ", "%s %s", method, data)
}

// Response traces an API response body when HTTP tracing is enabled.
func (l *Logger) Response(method string, body []byte) {
	if l == nil || !l.traceHTTP {
		return
	}
	l.logf(ansiCyan, "← ", "%s %s", method, body)
}
