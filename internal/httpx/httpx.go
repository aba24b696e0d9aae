// Package httpx centralises the outbound HTTP plumbing shared by the search
// and page-fetch tools: one browser-like header set, bounded body reads with
// manual gzip handling, and a common retry-with-backoff policy.
package httpx

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxDownloadBytes bounds how much of any response body is read. 512 KiB is
// enough for any article page while keeping memory per fetch predictable.
const MaxDownloadBytes = 512 * 1024

// DefaultTimeout applies to every outbound search/fetch request.
const DefaultTimeout = 10 * time.Second

// defaultHeaders mimics a regular desktop browser. DuckDuckGo serves a
// CAPTCHA page to clients that look like bots, and some news sites refuse
// requests without Accept/Accept-Language.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Accept-Encoding": "gzip, deflate",
	"DNT":             "1",
}

// NewClient returns an HTTP client with the given timeout, falling back to
// DefaultTimeout when zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NewRequest builds a GET request carrying the shared browser-like headers.
// Setting Accept-Encoding explicitly disables the transport's transparent
// gzip handling, so callers must decode through ReadBody.
func NewRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	return req, nil
}

// ReadBody reads at most limit bytes of the response body, decompressing
// when the server declared gzip content-encoding. It does not close the body.
func ReadBody(resp *http.Response, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = MaxDownloadBytes
	}
	var r io.Reader = io.LimitReader(resp.Body, limit)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

// StatusError reports a non-2xx HTTP status. Retry policies use the code to
// separate transient server failures from permanent client errors.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

// IsClientError reports whether err is a StatusError in the 4xx range.
func IsClientError(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.Code >= 400 && se.Code < 500
}

// IsPermissionDenied reports whether err is an explicit 401/403 status.
func IsPermissionDenied(err error) bool {
	se, ok := err.(*StatusError)
	return ok && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}
