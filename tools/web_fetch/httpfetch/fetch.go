// Package httpfetch downloads a page over plain HTTP and extracts clean
// readable text with a streaming tag-stripping parser. It is the default
// fetcher: cheap, dependency-free at runtime, and good enough for article
// pages that do not require JavaScript.
package httpfetch

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mohammad-safakhou/scout/internal/httpx"
	"github.com/mohammad-safakhou/scout/internal/metrics"
	"github.com/mohammad-safakhou/scout/tools/web_fetch/models"
)

const (
	maxRetries = 2
	baseDelay  = 500 * time.Millisecond
)

// Fetch downloads pages with bounded size and retries.
type Fetch struct {
	Retry httpx.RetryPolicy

	client *http.Client
	logger *log.Logger
}

func New() *Fetch {
	return &Fetch{
		Retry:  httpx.RetryPolicy{MaxAttempts: maxRetries, BaseDelay: baseDelay},
		client: httpx.NewClient(httpx.DefaultTimeout),
		logger: log.New(os.Stderr, "[fetch] ", log.LstdFlags),
	}
}

// Exec fetches url and returns its title and body text clipped to maxChars.
// It never returns an error: network failures, hostile status codes,
// non-HTML content, and parse trouble all degrade to an empty PageText so
// the pipeline can fall back to the search snippet for that source.
func (f *Fetch) Exec(ctx context.Context, url string, maxChars int) models.PageText {
	empty := models.PageText{URL: url}

	var body []byte
	err := f.Retry.Do(ctx, func() error {
		req, err := httpx.NewRequest(ctx, url)
		if err != nil {
			return httpx.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.Printf("network error fetching %s: %v", url, err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			serr := &httpx.StatusError{Code: resp.StatusCode, URL: url}
			if httpx.IsClientError(serr) {
				// 403s are common on paywalled sites; skip, don't retry.
				f.logger.Printf("http %d fetching %s, skipping", resp.StatusCode, url)
				return httpx.Permanent(serr)
			}
			f.logger.Printf("http %d fetching %s, retrying", resp.StatusCode, url)
			return serr
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "text/plain") {
			f.logger.Printf("skipping non-HTML page %s (%s)", url, contentType)
			return httpx.Permanent(&unsupportedContentError{contentType})
		}

		body, err = httpx.ReadBody(resp, httpx.MaxDownloadBytes)
		return err
	})
	if err != nil {
		metrics.PageFetches.WithLabelValues("error").Inc()
		return empty
	}

	title, text := extractText(bytes.NewReader(body), maxChars)
	if text == "" {
		metrics.PageFetches.WithLabelValues("empty").Inc()
	} else {
		metrics.PageFetches.WithLabelValues("ok").Inc()
	}
	return models.PageText{URL: url, Title: title, Text: text}
}

type unsupportedContentError struct {
	contentType string
}

func (e *unsupportedContentError) Error() string {
	return "unsupported content type " + e.contentType
}
