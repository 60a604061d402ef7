// ABOUTME: Builds zerolog loggers from the [log] config section
// ABOUTME: Adapts a logger to the printf-style debugf callbacks used by the TUI

// Package logging constructs the application's structured loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config selects the level, format and destination of a logger
type Config struct {
	Level  string    // trace, debug, info, warn, error; unknown values mean info
	Format string    // console or json
	Output io.Writer // nil discards all output
}

// New creates a logger for cfg. The level is set per logger; zerolog's global level is left alone.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		return zerolog.Nop()
	}

	out := cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05.000", NoColor: true}
	}

	return zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// OpenFile creates (truncating) a log file and returns a logger writing to it.
// The returned closer must be closed on exit.
func OpenFile(path string, cfg Config) (zerolog.Logger, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log file: %w", err)
	}

	cfg.Output = f

	return New(cfg), f, nil
}

// Debugf adapts logger to a printf-style callback logging at debug level
func Debugf(logger zerolog.Logger) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		logger.Debug().Msgf(format, args...)
	}
}
