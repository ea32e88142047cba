package main

import (
	"log/slog"
	"testing"

	"github.com/matsen/bibcondense/internal/config"
)

func TestResolveLogLevel(t *testing.T) {
	debugCfg, err := config.Parse([]byte("log_level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		cfg       *config.Config
		flagValue string
		flagSet   bool
		want      slog.Level
	}{
		{"default", config.Default(), config.DefaultLogLevel, false, slog.LevelInfo},
		{"from config", debugCfg, config.DefaultLogLevel, false, slog.LevelDebug},
		{"flag wins", debugCfg, "error", true, slog.LevelError},
		{"flag case-insensitive", config.Default(), "WARN", true, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLogLevel(tt.cfg, tt.flagValue, tt.flagSet)
			if err != nil {
				t.Fatalf("resolveLogLevel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveLogLevel_InvalidFlag(t *testing.T) {
	_, err := resolveLogLevel(config.Default(), "bogus", true)
	if err == nil {
		t.Fatal("resolveLogLevel() expected error for --log-level bogus")
	}
	if got := exitCode(err); got != ExitError {
		t.Errorf("exitCode() = %d, want %d", got, ExitError)
	}
}
