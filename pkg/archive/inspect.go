package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
)

// Summary describes an archive without unpacking it.
type Summary struct {
	Format  Format
	Entries int
	// Size is the total uncompressed size of regular files.
	Size int64
}

// Inspect sniffs the archive at path and reads every header, failing on
// the first corrupt one.
func Inspect(path string) (Summary, error) {
	format, err := Sniff(path)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Format: format}

	if format == FormatZip {
		r, err := zip.OpenReader(path)
		if err != nil {
			return sum, fmt.Errorf("open zip archive: %w", err)
		}
		defer r.Close()
		for _, f := range r.File {
			sum.Entries++
			sum.Size += int64(f.UncompressedSize64)
		}
		return sum, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return sum, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, format)
	if err != nil {
		return sum, err
	}
	defer closeFn()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read tar header: %w", err)
		}
		sum.Entries++
		if hdr.Typeflag == tar.TypeReg {
			sum.Size += hdr.Size
		}
	}
	if sum.Entries == 0 {
		return sum, fmt.Errorf("archive %s is empty", path)
	}
	return sum, nil
}
