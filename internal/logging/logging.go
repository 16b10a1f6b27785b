package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a logger writing to w. JSON output is used when the command
// itself writes JSON to stdout, text otherwise.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init installs New(w, level, json) as the slog default
func Init(w io.Writer, level slog.Level, json bool) {
	slog.SetDefault(New(w, level, json))
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
