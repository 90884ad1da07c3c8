package logging

import (
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LOG_ENCODING")

	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("Failed to create default logger: %v", err)
	}
	defer logger.Sync()
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Default logger should not enable debug level")
	}

	t.Setenv("LOG_ENCODING", "console")
	consoleLogger, err := NewLogger()
	if err != nil {
		t.Fatalf("Failed to create console logger: %v", err)
	}
	defer consoleLogger.Sync()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run("level_"+level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", level)
			logger, err := NewLogger()
			if err != nil {
				t.Fatalf("Failed to create logger with level %s: %v", level, err)
			}
			defer logger.Sync()
			var want zapcore.Level
			_ = want.Set(level)
			if !logger.Core().Enabled(want) {
				t.Errorf("Logger should enable level %s", level)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		" warn ":  zapcore.WarnLevel,
		"invalid": zapcore.InfoLevel,
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestMustNewLogger(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")
	logger := MustNewLogger()
	if logger == nil {
		t.Fatal("MustNewLogger returned nil")
	}
	defer logger.Sync()
}

func TestForAccount(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := ForAccount(zap.New(core), "screen", 42)

	logger.Info("refreshed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "screen" {
		t.Errorf("Expected logger name screen, got %q", entries[0].LoggerName)
	}
	if got := entries[0].ContextMap()["account_id"]; got != int64(42) {
		t.Errorf("Expected account_id 42, got %v", got)
	}
}
