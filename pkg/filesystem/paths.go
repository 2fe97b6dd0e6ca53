package filesystem

import (
	"path/filepath"
	"strconv"
)

// RootfsArchive is the file name of a filesystem's rootfs tarball inside support/.
const RootfsArchive = "rootfs.tar.gz"

// Dir is the directory holding the files of filesystem id. The rootfs is
// extracted directly into it, next to support/.
func Dir(filesDir string, id int64) string {
	return filepath.Join(filesDir, strconv.FormatInt(id, 10))
}

// SupportDir holds ula's own files for a filesystem (the rootfs archive, helper scripts).
func SupportDir(filesDir string, id int64) string {
	return filepath.Join(Dir(filesDir, id), "support")
}

// ArchivePath is where the rootfs tarball of filesystem id is kept.
func ArchivePath(filesDir string, id int64) string {
	return filepath.Join(SupportDir(filesDir, id), RootfsArchive)
}
