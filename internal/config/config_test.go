package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	// Run in an empty directory so no config file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Contains(t, cfg.Data.CountriesURL, "ne_10m_admin_0_countries_ind.zip")
	assert.Contains(t, cfg.Data.RiversURL, "hydrorivers_100.gpkg")
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.True(t, cfg.Basemap.Enabled)
	assert.Contains(t, cfg.Basemap.PrimaryURL, "{z}/{x}/{y}")
	assert.Equal(t, 512, cfg.Basemap.CacheEntries)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: 9999\noutput:\n  dir: maps\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "maps", cfg.Output.Dir)
	// Unset keys keep their defaults.
	assert.Equal(t, "data", cfg.Data.Dir)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0o644))
	t.Chdir(dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.True(t, cfg.Basemap.Enabled)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
