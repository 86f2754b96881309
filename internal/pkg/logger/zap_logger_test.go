package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Debug("Test", "debug message", nil)
	l.Info("Test", "info message", map[string]interface{}{"k": "v"})
	l.Warn("Test", "warn message", nil)
	l.Error("Test", "error message", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "Test", entries[1].ContextMap()["module"])

	ctx := entries[3].ContextMap()
	assert.Contains(t, ctx, "error_ref")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Info("Test", "ignored", nil)
		_ = l.Sync()
	})
}
