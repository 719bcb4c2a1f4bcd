package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/lundberg/diffreview/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		enabled   zapcore.Level
		disabled  zapcore.Level
		wantError bool
	}{
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}, enabled: zapcore.DebugLevel, disabled: zapcore.DebugLevel - 1},
		{name: "json warn", cfg: config.LoggingConfig{Level: "warn", Format: "json"}, enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel},
		{name: "default format", cfg: config.LoggingConfig{Level: "info"}, enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
		{name: "bad level", cfg: config.LoggingConfig{Level: "chatty", Format: "json"}, wantError: true},
		{name: "bad format", cfg: config.LoggingConfig{Level: "info", Format: "xml"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = logger.Sync() }()

			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.disabled))
		})
	}
}
