package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		level   string
		enabled zapcore.Level
		hidden  zapcore.Level
		wantErr bool
	}{
		{"production", false, "", zapcore.InfoLevel, zapcore.DebugLevel, false},
		{"debug flag", true, "", zapcore.DebugLevel, zapcore.DebugLevel - 1, false},
		{"explicit warn", false, "warn", zapcore.WarnLevel, zapcore.InfoLevel, false},
		{"level beats debug", true, "error", zapcore.ErrorLevel, zapcore.WarnLevel, false},
		{"bad level", false, "loud", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.debug, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Init() error: %v", err)
			}
			core := GetSugaredLogger().Desugar().Core()
			if !core.Enabled(tt.enabled) {
				t.Errorf("level %s disabled", tt.enabled)
			}
			if core.Enabled(tt.hidden) {
				t.Errorf("level %s enabled", tt.hidden)
			}
			Sync()
		})
	}
}

func TestGetSugaredLoggerFallback(t *testing.T) {
	mu.Lock()
	log = nil
	mu.Unlock()
	if GetSugaredLogger() == nil {
		t.Fatal("GetSugaredLogger() returned nil")
	}
}
