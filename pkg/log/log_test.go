package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestUse_StructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	t.Cleanup(func() { Use(zap.NewNop()) })

	Infow("Agent operation finished", "operation", "chat", "replyLength", 12)
	Error("Chat turn failed", errors.New("boom"))
	Debugw("Chat reply interpreted", "kind", "suggestion")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "chat", entries[0].ContextMap()["operation"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, "suggestion", entries[2].ContextMap()["kind"])
}

func TestInit_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	Init("debug", "json", dir)
	t.Cleanup(func() { Use(zap.NewNop()) })

	Info("merhaba")
	Sync()
	assert.FileExists(t, dir+"/agent.log")
}
