// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Design goals:
//   - Simple API (Errorf, Infof, Debugf, Tracef)
//   - Centralized verbosity control
//   - Zero formatting logic at call sites
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("matcher started")
//	logger.Debugf("definition=%s remaining=%d", name, count)
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

// log is the package-wide zerolog logger. Output goes to stderr so logs
// stay separated from normal program output, which matters for CLI tools
// sitting in pipelines.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006/01/02 15:04:05"}).
	With().Timestamp().Logger().Level(zerolog.InfoLevel)

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup
// (e.g. after parsing CLI flags).
func SetVerbosity(v int) {
	switch Level(v) {
	case Error:
		log = log.Level(zerolog.ErrorLevel)
	case Info:
		log = log.Level(zerolog.InfoLevel)
	case Debug:
		log = log.Level(zerolog.DebugLevel)
	default:
		log = log.Level(zerolog.TraceLevel)
	}
}

// With returns a child logger carrying a fixed key/value pair, for
// call sites that tag every message with the same context (e.g. the
// strategy definition being matched).
func With(key, value string) zerolog.Logger {
	return log.With().Str(key, value).Logger()
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// Debugf logs debugging information.
// Use this for diagnostic output useful during development.
func Debugf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	log.Trace().Msgf(format, args...)
}
