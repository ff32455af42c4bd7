// Package logging wraps zerolog with the settings zktransfer uses everywhere.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/zktransfer/internal/model"
)

// NewFromConfig builds a logger from the log section of the config
func NewFromConfig(cfg model.LogConfig) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, cfg model.LogConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(ParseLevel(cfg.Level))
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
