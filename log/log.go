// Package log provides the process-wide logger used by the navigation
// stack. It wraps zerolog rather than the standard library logger, matching
// the rest of the robot control code.
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the default logger, writing human-readable output to stderr.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Caller().Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Discard returns a logger that drops everything, for use in tests that
// don't want console noise.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}

// Named returns a child logger tagged with the given component name.
func Named(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}
