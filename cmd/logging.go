package cmd

import (
	"log/slog"
	"os"
)

// newLogger builds the process-wide structured logger. Debug mode lowers the
// level and includes source positions.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
}
