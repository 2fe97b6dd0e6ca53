package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultRetries is the retry budget for transient HTTP failures.
const DefaultRetries = 3

// Immutable
type httpHandler struct {
	client *retryablehttp.Client
}

// NewHTTPHandler opens http(s) resources with GET, retrying connection
// errors and 5xx responses up to retries times.
func NewHTTPHandler(retries int) SchemeHandler {
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 10 * time.Second
	c.Logger = nil
	c.HTTPClient.Timeout = 0 // Handled by context
	c.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			slog.Debug("Retrying request", "url", req.URL.String(), "attempt", attempt)
		}
	}
	return &httpHandler{client: c}
}

func (h *httpHandler) Schemes() []string {
	return []string{"http", "https"}
}

func (h *httpHandler) Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}
