package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"anvil-esign/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Name: "test", Env: "production"},
		Logging: config.LoggingConfig{Level: "warn", Format: "console"},
	}

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
