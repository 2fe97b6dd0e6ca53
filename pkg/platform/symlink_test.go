package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ula/pkg/common"
)

func TestCreateSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0644))

	link := filepath.Join(dir, "link.txt")
	require.NoError(t, Symlinker{}.CreateSymlink(target, link))

	dest, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, dest)

	assert.Error(t, Symlinker{}.CreateSymlink(target, link), "existing link must not be overwritten")
}

func TestDiscoverAndCreateSymlinks(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "support"), 0755))
	for _, name := range []string{"busybox", "proot", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, "support", name), nil, 0755))
	}
	require.NoError(t, os.Mkdir(filepath.Join(src, "support", "subdir"), 0755))

	links, err := DiscoverSymlinks(src, map[string]string{"support/*": "support"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []common.Symlink{
		{Source: filepath.Join(src, "support", "busybox"), Target: filepath.Join("support", "busybox")},
		{Source: filepath.Join(src, "support", "proot"), Target: filepath.Join("support", "proot")},
	}, links)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "support"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "support", "proot"), []byte("stale"), 0644))

	require.NoError(t, Symlinker{}.CreateSymlinks(root, links))
	dest, err := os.Readlink(filepath.Join(root, "support", "proot"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(src, "support", "proot"), dest)
}

func TestDiscoverSymlinksMissingDir(t *testing.T) {
	_, err := DiscoverSymlinks(t.TempDir(), map[string]string{"nope/*": "x"})
	assert.Error(t, err)
}
