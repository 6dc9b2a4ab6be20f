package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.ProviderAttempts)
	assert.Len(t, cfg.Tiers, 4)
	assert.Equal(t, 0.50, cfg.Tiers["0.50"])
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("MINDDUEL_ADDR", ":9090")
	t.Setenv("MINDDUEL_LOG_LEVEL", "debug")
	t.Setenv("MINDDUEL_PROVIDER_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.ProviderAttempts)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "addr: \":7070\"\nlog_level: warn\ntiers:\n  \"25\": 25\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("MINDDUEL_CONFIG", path)
	t.Setenv("MINDDUEL_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr, "file overrides default")
	assert.Equal(t, "error", cfg.LogLevel, "env overrides file")
	assert.Equal(t, 25.0, cfg.Tiers["25"])
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("MINDDUEL_ADDR", "")
	_, err := Load()
	assert.Error(t, err)
}
