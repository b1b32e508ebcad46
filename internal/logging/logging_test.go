package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "info console", level: "info", format: "console", wantLevel: zapcore.InfoLevel},
		{name: "debug json", level: "debug", format: "json", wantLevel: zapcore.DebugLevel},
		{name: "default format", level: "warn", format: "", wantLevel: zapcore.WarnLevel},
		{name: "upper case", level: "ERROR", format: "JSON", wantLevel: zapcore.ErrorLevel},
		{name: "bad level", level: "loud", format: "console", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
