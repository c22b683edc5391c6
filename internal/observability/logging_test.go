package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/ticketapp/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger, err := NewLogger(config.LoggerConfig{Level: tt.level, Output: "stderr"}, "test")
		if err != nil {
			t.Fatalf("NewLogger(%q) error = %v", tt.level, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("level %q: %v not enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("level %q: %v enabled", tt.level, tt.want-1)
		}
	}
}
