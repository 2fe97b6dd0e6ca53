// Package archive unpacks and packs rootfs archives.
package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Extract unpacks the archive at src into dest. The format comes from the
// extension, or from the content when the name does not tell.
// Entries escaping dest are rejected.
func Extract(ctx context.Context, src, dest string) error {
	format, err := Detect(src)
	if err != nil {
		return err
	}
	if format == FormatZip {
		return extractZip(ctx, src, dest)
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, format)
	if err != nil {
		return err
	}
	defer closeFn()

	return extractTar(ctx, tar.NewReader(r), dest)
}

// decompress wraps r with the decoder for format.
func decompress(r io.Reader, format Format) (io.Reader, func(), error) {
	switch format {
	case FormatTarGz:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return gzr, func() { gzr.Close() }, nil
	case FormatTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	case FormatTar:
		return r, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported archive format: %s", format)
}

func extractZip(ctx context.Context, src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := securePath(dest, f.Name)
		if err != nil {
			return err
		}
		if err := checkParent(dest, target); err != nil {
			return err
		}
		info := f.FileInfo()
		if info.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		err = writeFile(target, info.Mode().Perm(), rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTar(ctx context.Context, tr *tar.Reader, dest string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}
		if err := checkParent(dest, target); err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(hdr.Mode).Perm()|0700); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, fs.FileMode(hdr.Mode).Perm(), tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			// Rootfs links are absolute inside the guest, so only the link path is checked.
			if err := replaceWith(target, func() error { return os.Symlink(hdr.Linkname, target) }); err != nil {
				return fmt.Errorf("symlink %s: %w", hdr.Name, err)
			}
		case tar.TypeLink:
			oldname, err := securePath(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := checkParent(dest, oldname); err != nil {
				return err
			}
			if err := replaceWith(target, func() error { return os.Link(oldname, target) }); err != nil {
				return fmt.Errorf("hardlink %s: %w", hdr.Name, err)
			}
		default:
			// Device nodes and fifos cannot be created unprivileged.
		}
	}
}

// securePath joins name onto dest, rejecting entries that escape it.
func securePath(dest, name string) (string, error) {
	clean := filepath.Clean(dest)
	target := filepath.Join(clean, name)
	if target != clean && !strings.HasPrefix(target, clean+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return target, nil
}

// checkParent resolves the deepest existing ancestor of target and makes
// sure symlinks extracted earlier do not lead it outside dest.
func checkParent(dest, target string) error {
	root, err := filepath.EvalSymlinks(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			if resolved != root && !strings.HasPrefix(resolved, root+string(os.PathSeparator)) {
				return fmt.Errorf("illegal file path in archive: %s escapes through a symlink", target)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func replaceWith(target string, create func() error) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if _, err := os.Lstat(target); err == nil {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	return create()
}

func writeFile(target string, mode fs.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", target, err)
	}
	// An existing entry may be a symlink or a hardlink to a file outside
	// dest; never write through it.
	if fi, err := os.Lstat(target); err == nil && !fi.IsDir() {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("replace %s: %w", target, err)
		}
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode|0200)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	return f.Close()
}
