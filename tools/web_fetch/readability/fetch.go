// Package readability is an alternative extractor that runs go-readability
// over the downloaded document instead of the built-in tag stripper. It
// yields cleaner article bodies on pages with heavy boilerplate, at the cost
// of buffering the whole (bounded) document before extraction.
package readability

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/mohammad-safakhou/scout/internal/helpers"
	"github.com/mohammad-safakhou/scout/internal/httpx"
	"github.com/mohammad-safakhou/scout/internal/metrics"
	"github.com/mohammad-safakhou/scout/tools/web_fetch/models"
)

type Fetch struct {
	Retry httpx.RetryPolicy

	client *http.Client
	logger *log.Logger
}

func New() *Fetch {
	return &Fetch{
		Retry:  httpx.RetryPolicy{MaxAttempts: 2, BaseDelay: 500 * time.Millisecond},
		client: httpx.NewClient(httpx.DefaultTimeout),
		logger: log.New(os.Stderr, "[fetch-readability] ", log.LstdFlags),
	}
}

// Exec mirrors the httpfetch contract: same download rules, same graceful
// degradation, different extraction.
func (f *Fetch) Exec(ctx context.Context, rawURL string, maxChars int) models.PageText {
	empty := models.PageText{URL: rawURL}

	var body []byte
	err := f.Retry.Do(ctx, func() error {
		req, err := httpx.NewRequest(ctx, rawURL)
		if err != nil {
			return httpx.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.Printf("network error fetching %s: %v", rawURL, err)
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			serr := &httpx.StatusError{Code: resp.StatusCode, URL: rawURL}
			if httpx.IsClientError(serr) {
				f.logger.Printf("http %d fetching %s, skipping", resp.StatusCode, rawURL)
				return httpx.Permanent(serr)
			}
			return serr
		}
		body, err = httpx.ReadBody(resp, httpx.MaxDownloadBytes)
		return err
	})
	if err != nil {
		metrics.PageFetches.WithLabelValues("error").Inc()
		return empty
	}

	article, err := readability.FromReader(bytes.NewReader(body), mustParseURL(rawURL))
	if err != nil {
		f.logger.Printf("readability extraction failed for %s: %v", rawURL, err)
		metrics.PageFetches.WithLabelValues("empty").Inc()
		return empty
	}
	text := helpers.Truncate(strings.TrimSpace(article.TextContent), maxChars)
	metrics.PageFetches.WithLabelValues("ok").Inc()
	return models.PageText{
		URL:   rawURL,
		Title: strings.TrimSpace(article.Title),
		Text:  text,
	}
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
