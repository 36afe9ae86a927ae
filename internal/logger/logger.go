// Package logger provides leveled logging for sercha-view.
// When verbose mode is enabled via the --verbose flag, debug messages
// are emitted to help users follow the search and highlight pipeline.
// Records are written by zerolog, as console lines or JSON.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	level   = zerolog.WarnLevel
	format  = FormatConsole
	output  io.Writer = os.Stderr
	log               = build()
)

// build must be called with mu held for writing (or during init).
func build() zerolog.Logger {
	w := output
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339}
	}
	lvl := level
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
// Verbose mode lowers the threshold to debug.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
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
	log = build()
}

// SetFormat selects console or JSON records.
func SetFormat(f string) error {
	f = strings.ToLower(strings.TrimSpace(f))
	if f != FormatConsole && f != FormatJSON {
		return fmt.Errorf("unknown log format %q", f)
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	log = build()
	return nil
}

// SetLevel sets the threshold used when verbose mode is off.
func SetLevel(l string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(l)))
	if err != nil {
		return fmt.Errorf("unknown log level %q: %w", l, err)
	}
	mu.Lock()
	defer mu.Unlock()
	level = parsed
	log = build()
	return nil
}

// Get returns the current logger for callers that attach structured fields.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	l := Get()
	l.Debug().Msgf(format, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	l := Get()
	l.Debug().Str("section", name).Msg("=== " + name + " ===")
}

// Info logs an informational message.
func Info(format string, args ...any) {
	l := Get()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	l := Get()
	l.Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	l := Get()
	l.Error().Msgf(format, args...)
}
