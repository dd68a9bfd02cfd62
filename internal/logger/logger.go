// Package logger builds the zerolog root logger shared by all components.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns the root logger writing JSON to stdout at the given level.
// Components derive child loggers via With().Str("component", ...).
func New(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
