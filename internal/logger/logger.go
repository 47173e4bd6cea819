// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing to stderr and installs it as the global zerolog logger.
// format is "json" or "console"; level is any zerolog level name, defaulting to info.
func New(level, format string) (zerolog.Logger, error) {
	l, err := build(os.Stderr, level, format)
	if err != nil {
		return zerolog.Nop(), err
	}
	log.Logger = l
	return l, nil
}

func build(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if s := strings.ToLower(strings.TrimSpace(level)); s != "" {
		parsed, err := zerolog.ParseLevel(s)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		lvl = parsed
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid LOG_FORMAT %q: want json or console", format)
	}

	zerolog.SetGlobalLevel(lvl)
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
