// Package logging sets up the diagnostics that bibcondense writes to
// stderr, kept apart from the run report on stdout.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Levels lists the accepted level names, as in the config file.
var Levels = []string{"debug", "info", "warn", "warning", "error"}

// Init installs the default logger. Log records follow the report format:
// JSON lines next to a JSON report, key=value text next to --human output.
func Init(w io.Writer, level slog.Level, jsonOutput bool) {
	opts := &slog.HandlerOptions{Level: level}
	if jsonOutput {
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
}

// ParseLevel maps a level name from Levels to a slog.Level, ignoring case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (want one of: %s)", s, strings.Join(Levels, ", "))
}
