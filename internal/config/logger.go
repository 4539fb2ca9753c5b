package config

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger from the log_* settings.
func (c *Configuration) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *Configuration) level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// UseCaseLogger returns the logger for service use-case records, or nil when
// log_use_cases is off. Records share the process format and level.
func (c *Configuration) UseCaseLogger(w io.Writer) *slog.Logger {
	if !c.LogUseCases {
		return nil
	}
	return c.NewLogger(w)
}
