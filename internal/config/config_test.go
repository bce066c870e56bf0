package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelwallet/kestrel/internal/config"
)

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "5m", cfg.Security.IdleTimeout)
	assert.True(t, cfg.Security.MemoryLock)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Home)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.Defaults()
	cfg.Security.IdleTimeout = "30m"
	cfg.Logging.Level = "debug"
	require.NoError(t, config.Save(cfg, path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "30m", loaded.Security.IdleTimeout)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "5m", cfg.Security.IdleTimeout)
}

func TestLoadOrDefaults_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadOrDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().Security.IdleTimeout, cfg.Security.IdleTimeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := config.NewLogger(config.LoggingConfig{Level: "off"})
	require.NoError(t, err)
	logger.Info("discarded")

	logFile := filepath.Join(t.TempDir(), "logs", "kestrel.log")
	logger, err = config.NewLogger(config.LoggingConfig{Level: "debug", File: logFile})
	require.NoError(t, err)
	logger.Debug("written")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestDataDir(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Home: "/tmp/kestrel-home"}
	assert.Equal(t, filepath.Join("/tmp/kestrel-home", "data"), cfg.DataDir())
}
