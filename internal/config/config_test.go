package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, DefaultInterval, time.Duration(cfg.Interval))
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "format": "md",
  "interval": "500ms",
  "favorites": [22, 8080],
  "services_file": "/etc/lsport/services"
}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.Interval))
	assert.Equal(t, []int{22, 8080}, cfg.Favorites)
	assert.Equal(t, "/etc/lsport/services", cfg.ServicesFile)
	// untouched keys keep their defaults
	assert.Equal(t, "local", cfg.Method)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"interval": "soon"}`), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveLoadPlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.plist")

	cfg := Defaults()
	cfg.Sort = "port"
	cfg.Interval = Duration(5 * time.Second)
	cfg.Favorites = []int{5432}
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<plist")
	assert.Contains(t, string(data), "5s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Defaults()
	cfg.ToggleFavorite(3000)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/lsport/config.json", DefaultPath())
}

func TestToggleFavorite(t *testing.T) {
	cfg := Defaults()
	assert.True(t, cfg.ToggleFavorite(80))
	assert.True(t, cfg.ToggleFavorite(443))
	assert.True(t, cfg.IsFavorite(80))

	assert.False(t, cfg.ToggleFavorite(80))
	assert.False(t, cfg.IsFavorite(80))
	assert.Equal(t, []int{443}, cfg.Favorites)
}
