package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a configured zap.Logger.
// LOG_LEVEL selects the level (default "info", unknown values fall back to info).
// LOG_ENCODING=console switches to the colored development encoder; anything
// else produces JSON with ISO8601 timestamps.
func NewLogger() (*zap.Logger, error) {
	var config zap.Config

	if os.Getenv("LOG_ENCODING") == "console" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))

	return config.Build()
}

// MustNewLogger creates a logger and panics if initialization fails.
func MustNewLogger() *zap.Logger {
	logger, err := NewLogger()
	if err != nil {
		panic(err)
	}
	return logger
}

// ForAccount scopes a logger to a single viewer session.
func ForAccount(logger *zap.Logger, component string, accountID int64) *zap.Logger {
	return logger.Named(component).With(zap.Int64("account_id", accountID))
}

func parseLevel(raw string) zapcore.Level {
	level := strings.ToLower(strings.TrimSpace(raw))
	if level == "" {
		return zapcore.InfoLevel
	}
	var zapLevel zapcore.Level
	if err := zapLevel.Set(level); err != nil {
		return zapcore.InfoLevel
	}
	return zapLevel
}
