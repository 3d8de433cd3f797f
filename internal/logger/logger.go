package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger in development and a JSON logger elsewhere.
// An explicit level overrides the environment's default.
func New(environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	env := strings.ToLower(strings.TrimSpace(environment))
	lvl := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		lvl = ParseLevel(level)
	}
	if env == "development" || env == "dev" || env == "local" {
		if strings.TrimSpace(level) == "" {
			lvl = zerolog.DebugLevel
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(lvl).
			With().
			Timestamp().
			Str("service", "seminar-quote").
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "seminar-quote").
		Logger()
}

// ParseLevel maps textual levels onto zerolog levels, defaulting to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug", "dbg":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
