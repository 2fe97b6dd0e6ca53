package downloader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"ula/pkg/display"
)

// Mutable
type manager struct {
	handlers map[string]SchemeHandler
}

// NewDefaultDownloader handles http, https, file and bare local paths.
func NewDefaultDownloader() Downloader {
	return NewDownloader(DefaultRetries)
}

// NewDownloader is NewDefaultDownloader with an explicit HTTP retry budget.
func NewDownloader(retries int) Downloader {
	m := &manager{
		handlers: make(map[string]SchemeHandler),
	}
	m.Register(NewHTTPHandler(retries))
	m.Register(NewFileHandler())
	return m
}

func (m *manager) Register(h SchemeHandler) {
	for _, scheme := range h.Schemes() {
		m.handlers[scheme] = h
	}
}

func (m *manager) Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	h, err := m.handlerFor(uri)
	if err != nil {
		return nil, 0, err
	}
	return h.Open(ctx, uri)
}

func (m *manager) Download(ctx context.Context, uri string, w io.Writer, task display.Task) error {
	rc, size, err := m.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = Copy(ctx, w, rc, size, task)
	return err
}

func (m *manager) handlerFor(uri string) (SchemeHandler, error) {
	if isPlainPath(uri) {
		return m.handlers["file"], nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid uri: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	h, ok := m.handlers[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported scheme: %s", scheme)
	}
	return h, nil
}
