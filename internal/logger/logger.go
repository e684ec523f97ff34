// Package logger builds the application's zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aanand-mishra/coffee-tracker/internal/config"
)

// New returns a *zap.Logger configured for the given environment.
//
// Development (dev): human-readable console output at DEBUG level.
// Staging: JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
//
// cfg.Log.Level, when set, overrides the level picked by the environment.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.Env {
	case config.EnvProd:
		zapCfg = zap.NewProductionConfig()
	case config.EnvStaging:
		zapCfg = zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("logger.New: invalid log level %q: %w", cfg.Log.Level, err)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
