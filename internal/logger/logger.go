// Package logger constructs the zerolog logger used across the CLI.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitmirror/astuto-sync/internal/core/config"
)

// New builds a logger from the log section of the config. The console format
// is meant for humans running the CLI; json is for scheduled runs whose output
// lands in a log collector.
func New(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Log.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
