package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type entry struct {
	name    string
	content string
}

var sampleEntries = []entry{
	{"etc/hostname", "localhost"},
	{"home/user/.profile", "export PS1='$ '"},
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "rootfs.zip")
	writeZip(t, zipPath, sampleEntries)
	checkExtraction(t, zipPath)

	tarPath := filepath.Join(dir, "rootfs.tar")
	writeTar(t, tarPath, nil, sampleEntries)
	checkExtraction(t, tarPath)

	tgzPath := filepath.Join(dir, "rootfs.tar.gz")
	writeTar(t, tgzPath, func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }, sampleEntries)
	checkExtraction(t, tgzPath)

	zstPath := filepath.Join(dir, "rootfs.tar.zst")
	writeTar(t, zstPath, func(w io.Writer) io.WriteCloser {
		e, _ := zstd.NewWriter(w)
		return e
	}, sampleEntries)
	checkExtraction(t, zstPath)
}

func TestExtractSniffsUnnamedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged-upload")
	writeTar(t, path, func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }, sampleEntries)
	checkExtraction(t, path)
}

func TestExtractRejectsTraversal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.tar")
	writeTar(t, path, nil, []entry{{"../../escape.txt", "boom"}})

	err := Extract(context.Background(), path, filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "illegal file path") {
		t.Fatalf("expected traversal error, got %v", err)
	}
}

func TestExtractSymlinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(f)
	tw.WriteHeader(&tar.Header{Name: "bin/", Typeflag: tar.TypeDir, Mode: 0755})
	tw.WriteHeader(&tar.Header{Name: "bin/sh", Typeflag: tar.TypeSymlink, Linkname: "/bin/busybox"})
	tw.Close()
	f.Close()

	dest := filepath.Join(t.TempDir(), "out")
	if err := Extract(context.Background(), path, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	link, err := os.Readlink(filepath.Join(dest, "bin", "sh"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if link != "/bin/busybox" {
		t.Errorf("link = %q", link)
	}
}

func TestExtractUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("just text"), 0644)
	if err := Extract(context.Background(), path, t.TempDir()); err == nil {
		t.Fatal("expected error for plain text file")
	}
}

func writeZip(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()
	for _, e := range entries {
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
}

func writeTar(t *testing.T, path string, compressor func(io.Writer) io.WriteCloser, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var w io.WriteCloser = f
	if compressor != nil {
		w = compressor(f)
		defer w.Close()
	}

	tw := tar.NewWriter(w)
	defer tw.Close()
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0600, Size: int64(len(e.content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
}

func checkExtraction(t *testing.T, archivePath string) {
	t.Helper()
	dest := filepath.Join(filepath.Dir(archivePath), "extract_"+filepath.Base(archivePath))
	if err := Extract(context.Background(), archivePath, dest); err != nil {
		t.Fatalf("Extract failed for %s: %v", archivePath, err)
	}
	for _, e := range sampleEntries {
		checkFile(t, filepath.Join(dest, e.name), e.content)
	}
}

func checkFile(t *testing.T, path, content string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read extracted file %s: %v", path, err)
	}
	if string(b) != content {
		t.Errorf("%s: want %q, got %q", path, content, b)
	}
}

func TestExtractRejectsWriteThroughSymlink(t *testing.T) {
	outside := t.TempDir()
	path := filepath.Join(t.TempDir(), "linkescape.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(f)
	tw.WriteHeader(&tar.Header{Name: "etc", Typeflag: tar.TypeSymlink, Linkname: outside})
	tw.WriteHeader(&tar.Header{Name: "etc/passwd", Typeflag: tar.TypeReg, Mode: 0644, Size: 4})
	tw.Write([]byte("root"))
	tw.Close()
	f.Close()

	err = Extract(context.Background(), path, filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "illegal file path") {
		t.Fatalf("expected escape error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "passwd")); !os.IsNotExist(err) {
		t.Error("file written outside destination")
	}
}

func TestExtractRejectsHardlinkThroughSymlink(t *testing.T) {
	outside := t.TempDir()
	victim := filepath.Join(outside, "victim.txt")
	if err := os.WriteFile(victim, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "hardlink.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(f)
	tw.WriteHeader(&tar.Header{Name: "h", Typeflag: tar.TypeSymlink, Linkname: outside})
	tw.WriteHeader(&tar.Header{Name: "x", Typeflag: tar.TypeLink, Linkname: "h/victim.txt"})
	tw.WriteHeader(&tar.Header{Name: "x", Typeflag: tar.TypeReg, Mode: 0644, Size: 5})
	tw.Write([]byte("PWNED"))
	tw.Close()
	f.Close()

	err = Extract(context.Background(), path, filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "illegal file path") {
		t.Fatalf("expected escape error, got %v", err)
	}
	checkFile(t, victim, "keep")
}

func TestExtractReplacesHardlinkedEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relink.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(f)
	tw.WriteHeader(&tar.Header{Name: "a", Typeflag: tar.TypeReg, Mode: 0644, Size: 3})
	tw.Write([]byte("one"))
	tw.WriteHeader(&tar.Header{Name: "b", Typeflag: tar.TypeLink, Linkname: "a"})
	tw.WriteHeader(&tar.Header{Name: "b", Typeflag: tar.TypeReg, Mode: 0644, Size: 3})
	tw.Write([]byte("two"))
	tw.Close()
	f.Close()

	out := filepath.Join(t.TempDir(), "out")
	if err := Extract(context.Background(), path, out); err != nil {
		t.Fatal(err)
	}
	checkFile(t, filepath.Join(out, "a"), "one")
	checkFile(t, filepath.Join(out, "b"), "two")
}
