// Package logger arma el zerolog del proceso.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New crea el logger raíz.
// - level: debug|info|warn|error (default info)
// - format: json|console (default json; console para dev)
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
