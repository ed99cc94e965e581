package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the slog.Logger an embedder hands to client.NewClient,
// mapping Config.LogLevel the same way the teacher's middleware.NewLogger
// does. Output goes to stderr so an embedder's own stdout (e.g. an
// interactive chat prompt) stays uncluttered.
func NewLogger(cfg Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
		fallthrough
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
