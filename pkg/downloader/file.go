package downloader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// Immutable
type fileHandler struct{}

// NewFileHandler opens file:// URIs and plain paths on the local filesystem.
func NewFileHandler() SchemeHandler {
	return fileHandler{}
}

func (fileHandler) Schemes() []string {
	return []string{"file"}
}

func (fileHandler) Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	path, err := localPath(uri)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	return f, info.Size(), nil
}

func localPath(uri string) (string, error) {
	if isPlainPath(uri) {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri: %w", err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file host not supported: %s", u.Host)
	}
	return u.Path, nil
}

// Plain paths never contain a scheme separator.
func isPlainPath(uri string) bool {
	return !strings.Contains(uri, "://") && !strings.HasPrefix(uri, "file:")
}
