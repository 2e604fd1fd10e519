package log

import (
	"io"
	"log/slog"
	"strings"
)

// Config represents logging configuration.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
	}
}

// ParseLevel parses string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFromConfig builds a logger writing to w as described by cfg.
func NewFromConfig(w io.Writer, cfg Config) Logger {
	level := ParseLevel(cfg.Level)
	if strings.ToLower(cfg.Format) == "json" {
		return NewJSONLoggerTo(w, level)
	}
	return NewTextLoggerTo(w, level)
}

// Configure sets up the default logger based on config.
func Configure(w io.Writer, cfg Config) Logger {
	l := NewFromConfig(w, cfg)
	SetDefault(l)
	return l
}
