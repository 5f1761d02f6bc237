package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap.Logger according to environment configuration.
// Development mode (the default) uses a human-readable console encoder;
// APP_MODE=prod switches to JSON output at info level. Callers are
// responsible for calling Sync() at shutdown.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	if os.Getenv("APP_MODE") != "prod" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
