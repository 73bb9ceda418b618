package logging

import (
	"testing"

	"media-pipeline/internal/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	logger, err := New(&config.Config{Log: config.LogConfig{Level: "WARN", Format: "json"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) || !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("level not applied")
	}
	if zap.L() != logger {
		t.Fatalf("global logger not replaced")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&config.Config{Log: config.LogConfig{Level: "loud"}}); err == nil {
		t.Fatalf("New err = nil")
	}
}
