package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/deskview/internal/domain/entity"
)

func TestDefaultConfig_Views(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.Views.RetryInterval)
	assert.Equal(t, 3, cfg.Views.MaxRetries)
	assert.Equal(t, 15*time.Second, cfg.Views.LoadingScreenTimeout)
	assert.Greater(t, cfg.Views.ProbeInterval, cfg.Views.RetryInterval)
	assert.Equal(t, entity.DefaultMinimumServerVersion, cfg.Views.MinimumServerVersion)
	assert.NotNil(t, cfg.Servers)
	require.NoError(t, validateConfig(cfg))
}

func TestGetXDGDirs_DevMode(t *testing.T) {
	t.Setenv("ENV", "dev")

	dirs, err := GetXDGDirs()
	require.NoError(t, err)

	assert.Equal(t, dirs.ConfigHome, dirs.DataHome)
	assert.Contains(t, dirs.ConfigHome, ".dev")
}

func TestGetXDGDirs_RespectsEnvironment(t *testing.T) {
	base := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", base+"/config")
	t.Setenv("XDG_DATA_HOME", base+"/data")
	t.Setenv("XDG_STATE_HOME", base+"/state")

	configFile, err := GetConfigFile()
	require.NoError(t, err)
	assert.Equal(t, base+"/config/deskview/config.toml", configFile)

	dbFile, err := GetDatabaseFile()
	require.NoError(t, err)
	assert.Equal(t, base+"/data/deskview/deskview.sqlite", dbFile)

	logDir, err := GetLogDir()
	require.NoError(t, err)
	assert.Equal(t, base+"/state/deskview/logs", logDir)

	require.NoError(t, EnsureDirectories())
	assert.DirExists(t, base+"/data/deskview")
}
