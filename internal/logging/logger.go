// Package logging provides zap logger helpers.
package logging

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder profile and minimum level.
type Config struct {
	Development bool
	Level       string
}

// New builds a zap.Logger configured for development or production.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if cfg.Development {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := zcfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.DisableStacktrace = false
	zcfg.EncoderConfig.TimeKey = "ts"
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// RecoverPanic logs a recovered panic with its stack. It must be deferred
// directly so recover() observes the panic.
//
//	defer logging.RecoverPanic(logger, "refill")
func RecoverPanic(logger *zap.Logger, where string) {
	if rec := recover(); rec != nil {
		LogPanic(logger, where, rec)
	}
}

// LogPanic records a value obtained from recover().
func LogPanic(logger *zap.Logger, where string, rec any) {
	if logger == nil {
		return
	}
	logger.Error("panic recovered",
		zap.String("where", where),
		zap.Any("panic", rec),
		zap.ByteString("stack", debug.Stack()),
	)
}
