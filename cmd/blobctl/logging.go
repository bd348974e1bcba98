package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// configureLogger installs a text handler on the default logger at the
// requested level.
func configureLogger(raw string) error {
	var level slog.Level
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid --log-level %q", raw)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
