package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/guidance/internal/model"
)

func observed(t *testing.T) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return fromZap(zap.New(core)), logs
}

func TestRedactsNotes(t *testing.T) {
	l, logs := observed(t)

	l.Info("note updated", "session_id", "s1", "custom_note", "he bit his sister")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "s1", fields["session_id"])
	assert.Equal(t, "[17 chars]", fields["custom_note"])
}

func TestWithCarriesFields(t *testing.T) {
	l, logs := observed(t)

	l.With("op", "toggle").Warn("rejected", "reason", "resolved")

	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "toggle", entry.ContextMap()["op"])
	assert.Equal(t, "resolved", entry.ContextMap()["reason"])
}

func TestOddKeyValuesKeepTrailingKey(t *testing.T) {
	got := redact([]interface{}{"a", 1, "dangling"})
	assert.Equal(t, []interface{}{"a", 1, "dangling"}, got)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guidance.log")
	l, err := New(model.LogConfig{Mode: "production", Level: "debug", File: path})
	require.NoError(t, err)

	l.Debug("hello", "k", "v")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(model.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	Nop().Info("discarded")
}
