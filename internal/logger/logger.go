// Package logger provides verbose logging for the docsmith CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr so users can follow the generation pipeline
// section by section. Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	fmt.Fprintf(output, level+prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] ", "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] ", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "[WARN] ", "", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "[ERROR] ", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Component logs with a fixed "name: " prefix after the level tag.
type Component struct {
	prefix string
}

// For returns a logger that prefixes messages with name.
func For(name string) Component {
	return Component{prefix: name + ": "}
}

// Debug prints a prefixed message if verbose mode is enabled.
func (c Component) Debug(format string, args ...any) {
	write(false, "[DEBUG] ", c.prefix, format, args...)
}

// Info prints a prefixed message if verbose mode is enabled.
func (c Component) Info(format string, args ...any) {
	write(false, "[INFO] ", c.prefix, format, args...)
}

// Warn prints a prefixed warning if verbose mode is enabled.
func (c Component) Warn(format string, args ...any) {
	write(false, "[WARN] ", c.prefix, format, args...)
}

// Error prints a prefixed error regardless of verbose mode.
func (c Component) Error(format string, args ...any) {
	write(true, "[ERROR] ", c.prefix, format, args...)
}
