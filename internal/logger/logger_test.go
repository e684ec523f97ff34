package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/aanand-mishra/coffee-tracker/internal/config"
)

func TestNewPicksLevelFromEnv(t *testing.T) {
	cases := []struct {
		env   string
		level zapcore.Level
	}{
		{config.EnvDev, zapcore.DebugLevel},
		{config.EnvStaging, zapcore.DebugLevel},
		{config.EnvProd, zapcore.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.env, func(t *testing.T) {
			log, err := New(&config.Config{Env: tc.env})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tc.level))
			assert.False(t, log.Core().Enabled(tc.level-1))
		})
	}
}

func TestNewLevelOverride(t *testing.T) {
	log, err := New(&config.Config{Env: config.EnvDev, Log: config.LogConfig{Level: "error"}})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&config.Config{Env: config.EnvProd, Log: config.LogConfig{Level: "loud"}})
	assert.Error(t, err)
}
