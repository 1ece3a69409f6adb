// Package logging configures the global zerolog logger for Solace.
// Console output goes through a human-readable writer; an optional log
// file receives the same events as JSON for later inspection.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls logger setup.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// File is an optional path for persistent JSON logs.
	File string
	// Verbose forces debug level and caller annotations.
	Verbose bool
	// Console disables the stderr writer when false, logging to file only.
	Console bool
}

// DefaultConfig returns console-only info-level logging.
func DefaultConfig() Config {
	return Config{Level: "info", Console: true}
}

// Setup installs the global logger. Invalid levels fall back to info.
func Setup(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp()
	if cfg.Verbose {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	return nil
}
