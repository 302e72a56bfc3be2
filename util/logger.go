package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if GetEnvDefault("LOG_LEVEL", "") == "debug" {
		prodConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := prodConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
