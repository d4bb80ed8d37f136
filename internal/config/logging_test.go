package config

import (
	"context"
	"log/slog"
	"testing"
)

func TestInitLoggerLevel(t *testing.T) {
	log := InitLogger("warn", "production")
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !log.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatalf("warn should be enabled")
	}
}
