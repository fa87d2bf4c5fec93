package logger

import (
	"testing"

	"campus_portal_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  zap.AtomicLevel
	}{
		{"debug mode", "debug", "", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"release mode", "release", "", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"explicit level wins", "debug", "warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"bad level falls back", "release", "loud", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.Mode = tt.mode
			cfg.Log.Level = tt.level
			assert.Equal(t, tt.want.Level(), LevelFor(cfg))
		})
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(zap.InfoLevel)

	SetLevel(zap.ErrorLevel)
	assert.Equal(t, zap.ErrorLevel, Level())
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	assert.NotPanics(t, func() { Log.Info("before init") })
}
