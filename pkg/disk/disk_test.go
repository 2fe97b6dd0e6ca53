package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ula/pkg/config"
)

func newConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return config.NewForDirs(filepath.Join(dir, "cache"), filepath.Join(dir, "config"), filepath.Join(dir, "state"))
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "one"), make([]byte, 100), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "two"), make([]byte, 28), 0644))

	size, items := DirSize(dir)
	assert.Equal(t, int64(128), size)
	assert.Equal(t, 2, items)

	size, items = DirSize(filepath.Join(dir, "missing"))
	assert.Zero(t, size)
	assert.Zero(t, items)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.0 MiB", FormatSize(1<<20))
}

func TestInfoAndClean(t *testing.T) {
	cfg := newConfig(t)
	files := cfg.GetFilesDir()
	require.NoError(t, os.MkdirAll(filepath.Join(files, "1", "etc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(files, "1", "etc", "hostname"), []byte("ula"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(files, ".import-1234"), []byte("partial"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(files, "2.extracting"), 0755))
	require.NoError(t, os.MkdirAll(cfg.GetDownloadDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.GetDownloadDir(), "x"), []byte("x"), 0644))

	m := NewManager(cfg)
	res, err := m.Info()
	require.NoError(t, err)
	require.NotNil(t, res.Output.Table)
	assert.Len(t, res.Output.Table.Rows, 4)
	assert.Equal(t, "Total", res.Output.KV[0].Key)

	free, err := m.Free()
	require.NoError(t, err)
	assert.Greater(t, free.AvailableBytes(), int64(0))

	cleaned := m.Clean()
	assert.Len(t, cleaned, 3)
	assert.NoFileExists(t, filepath.Join(files, ".import-1234"))
	assert.NoDirExists(t, filepath.Join(files, "2.extracting"))
	assert.FileExists(t, filepath.Join(files, "1", "etc", "hostname"))
	assert.DirExists(t, cfg.GetDownloadDir())
	assert.NoFileExists(t, filepath.Join(cfg.GetDownloadDir(), "x"))
}
