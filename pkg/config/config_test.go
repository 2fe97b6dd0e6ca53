package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedDirs(t *testing.T) {
	root := t.TempDir()
	c := NewForDirs(filepath.Join(root, "cache"), filepath.Join(root, "config"), filepath.Join(root, "state"))

	assert.Equal(t, filepath.Join(root, "state", "files"), c.GetFilesDir())
	assert.Equal(t, filepath.Join(root, "state", "files", "apps"), c.GetAppsDir())
	assert.Equal(t, filepath.Join(root, "state", "ula.db"), c.GetDatabasePath())
	assert.Equal(t, filepath.Join(root, "cache", "downloads"), c.GetDownloadDir())

	w := c.Checkout()
	w.SetStateDir(filepath.Join(root, "other"))
	assert.Equal(t, filepath.Join(root, "other", "files"), c.GetFilesDir())
}

func TestFrozenConfigPanics(t *testing.T) {
	c := NewForDirs(t.TempDir(), t.TempDir(), t.TempDir())
	c.Freeze()
	assert.Panics(t, func() { c.SetCacheDir("/tmp/x") })
	assert.Panics(t, func() { c.Checkout() })
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	c := NewForDirs(t.TempDir(), t.TempDir(), t.TempDir())

	s := c.GetSettings()
	assert.Equal(t, DefaultSettings().CatalogURL, s.CatalogURL)
	assert.Equal(t, 3, s.HTTPRetries)

	require.NoError(t, c.UpdateSettings(func(s *Settings) error {
		s.CatalogURL = "https://mirror.example/rootfs/"
		return nil
	}))

	reopened := NewForDirs(c.GetCacheDir(), c.GetConfigDir(), c.GetStateDir())
	assert.Equal(t, "https://mirror.example/rootfs/", reopened.GetSettings().CatalogURL)
	assert.Equal(t, "Description not found.", reopened.GetSettings().DescriptionNotFound)
}

func TestInitEnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ULA_STATE_DIR", filepath.Join(root, "state"))
	t.Setenv("ULA_CONFIG_DIR", filepath.Join(root, "config"))
	t.Setenv("ULA_CACHE_DIR", filepath.Join(root, "cache"))
	t.Setenv("ULA_LOG_LEVEL", "debug")
	t.Setenv("ULA_CATALOG_URL", "acme/rootfs")

	c, err := Init()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "state", "files"), c.GetFilesDir())
	assert.Equal(t, "debug", c.GetSettings().LogLevel)
	assert.Equal(t, "acme/rootfs", c.GetSettings().CatalogURL)
}
