package zap

import (
	"errors"
	"testing"

	"github.com/goliatone/go-query-cache/cache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("CACHE GET", cache.Fields{"key": "Query:abc"})
	l.Info("info", nil)
	l.Warn("warn", cache.Fields{})
	l.Error("cache get failed", cache.Fields{"error": errors.New("boom")})

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
	}
	if got := entries[0].ContextMap()["key"]; got != "Query:abc" {
		t.Errorf("key field = %v", got)
	}
	if got := entries[3].ContextMap()["error"]; got != "boom" {
		t.Errorf("error field = %v", got)
	}
}

func TestNew_NilLogger(t *testing.T) {
	l := New(nil)
	l.Info("ignored", cache.Fields{"k": 1})
}
