package archive

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is an archive container/compression combination.
type Format string

const (
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tar.gz"
	FormatTarZst Format = "tar.zst"
	FormatZip    Format = "zip"
)

// SupportedExtensions returns the file extensions Extract understands.
func SupportedExtensions() []string {
	return []string{".tar.gz", ".tgz", ".tar.zst", ".tar", ".zip"}
}

// FormatFromName picks the format from the file extension.
func FormatFromName(name string) (Format, bool) {
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, true
	case strings.HasSuffix(name, ".tar.zst"):
		return FormatTarZst, true
	case strings.HasSuffix(name, ".tar"):
		return FormatTar, true
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, true
	}
	return "", false
}

// Sniff detects the format from the file content.
// Staged backups carry no useful extension, so this is what import relies on.
func Sniff(path string) (Format, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect type of %s: %w", path, err)
	}
	switch {
	case mtype.Is("application/gzip"):
		return FormatTarGz, nil
	case mtype.Is("application/zstd"):
		return FormatTarZst, nil
	case mtype.Is("application/x-tar"):
		return FormatTar, nil
	case mtype.Is("application/zip"):
		return FormatZip, nil
	}
	return "", fmt.Errorf("unsupported archive type %s", mtype.String())
}

// Detect uses the extension when it is known and falls back to sniffing.
func Detect(path string) (Format, error) {
	if f, ok := FormatFromName(path); ok {
		return f, nil
	}
	return Sniff(path)
}
