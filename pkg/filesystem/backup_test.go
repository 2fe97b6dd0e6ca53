package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ula/pkg/archive"
)

func TestExportThenVerify(t *testing.T) {
	filesDir := t.TempDir()
	dir := Dir(filesDir, 3)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "etc"), 0755))
	require.NoError(t, os.MkdirAll(SupportDir(filesDir, 3), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "etc", "os-release"), []byte("ID=debian\n"), 0644))
	require.NoError(t, os.WriteFile(ArchivePath(filesDir, 3), []byte("old archive"), 0644))

	dest := filepath.Join(t.TempDir(), "export.tar.gz")
	require.NoError(t, Export(context.Background(), filesDir, 3, dest))

	sum, err := VerifyBackup(dest)
	require.NoError(t, err)
	assert.Equal(t, archive.FormatTarGz, sum.Format)
	assert.Equal(t, 2, sum.Entries) // etc/ and etc/os-release
}

func TestExportMissing(t *testing.T) {
	err := Export(context.Background(), t.TempDir(), 99, filepath.Join(t.TempDir(), "x.tar.gz"))
	assert.Error(t, err)
}

func TestVerifyRejectsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	_, err := VerifyBackup(path)
	assert.Error(t, err)
}
