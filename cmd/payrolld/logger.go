// logger.go - Structured logging setup.

package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the daemon's zerolog logger. Output is human-readable on
// a terminal and JSON otherwise, so piped logs stay machine-parseable.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if fi, _ := os.Stderr.Stat(); fi != nil && fi.Mode()&os.ModeCharDevice != 0 {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).With().
		Timestamp().
		Str("service", "payrolld").
		Logger()
}
