package database

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGormLogger_WritesThroughZap(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantLog bool
	}{
		{"default level keeps warnings", "info", true},
		{"debug level keeps warnings", "debug", true},
		{"error level drops warnings", "error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			gl := newGormLogger(zap.New(core), tt.level)

			gl.Warn(context.Background(), "slow pool %d", 3)

			if !tt.wantLog {
				if logs.Len() != 0 {
					t.Fatalf("expected no entries, got %d", logs.Len())
				}
				return
			}
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if e := entries[0]; e.Level != zapcore.WarnLevel || e.LoggerName != "gorm" || !strings.Contains(e.Message, "slow pool 3") {
				t.Errorf("unexpected entry: %+v", e.Entry)
			}
		})
	}
}
