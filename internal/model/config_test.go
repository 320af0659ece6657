package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.OwnerID)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "guidance", cfg.Storage.RedisPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Display.RefreshSeconds)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "owner_id: parent-1\nstorage:\n  backend: memory\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv("GUIDANCE_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "parent-1", cfg.OwnerID)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: mongo\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.OwnerID = "parent-2"
	cfg.Storage.Backend = BackendRedis
	cfg.Storage.RedisAddr = "cache:6379"

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "parent-2", got.OwnerID)
	assert.Equal(t, BackendRedis, got.Storage.Backend)
	assert.Equal(t, "cache:6379", got.Storage.RedisAddr)
}

func TestValidate(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.OwnerID = " "
	assert.Error(t, cfg.Validate())

	cfg = defaultAppConfig()
	cfg.Storage.SQLitePath = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())

	cfg.Display.RefreshSeconds = -1
	assert.ErrorContains(t, cfg.Validate(), "refresh_seconds")
}
