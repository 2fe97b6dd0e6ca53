// Package downloader retrieves resources named by URIs. It backs both
// remote fetches (http, https) and reading user-selected local sources
// (file URIs and plain paths), reporting progress via the display package.
package downloader

import (
	"context"
	"io"

	"ula/pkg/display"
)

// Opener opens a stream on the resource named by uri.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, int64, error)
}

// Downloader manages the retrieval of resources from various URIs.
type Downloader interface {
	Opener
	// Download retrieves the resource at the specified URI and writes it to w.
	// It uses the provided display Task to report progress.
	Download(ctx context.Context, uri string, w io.Writer, task display.Task) error
}

// SchemeHandler defines the interface for handling specific URI schemes (e.g., "http://").
type SchemeHandler interface {
	// Open returns a stream on the resource and its size, or -1 if unknown.
	Open(ctx context.Context, uri string) (io.ReadCloser, int64, error)
	// Schemes returns the list of URI schemes (e.g., ["http", "https"]) this handler can process.
	Schemes() []string
}
