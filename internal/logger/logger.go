// Package logger configures structured logging and crash reporting for the
// pipeline commands.
package logger

import (
	"log/slog"
	"os"
)

// Setup installs the default slog logger. Stage output goes to stdout, so
// logs go to stderr. Verbose switches on per-row debug lines.
func Setup(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}
