package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Permissive)
	assert.Equal(t, Duration(0), cfg.WatchdogTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("permissive: true\nlog_level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Permissive)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Duration(0), cfg.WatchdogTimeout, "unset fields keep their default")
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_WatchdogTimeoutParsesDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watchdog_timeout: 5s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Duration(5*time.Second), cfg.WatchdogTimeout)
}
