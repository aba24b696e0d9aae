package web_fetch

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad-safakhou/scout/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/scout/tools/web_fetch/httpfetch"
	"github.com/mohammad-safakhou/scout/tools/web_fetch/models"
	"github.com/mohammad-safakhou/scout/tools/web_fetch/readability"
)

// WebFetcher downloads one URL and extracts readable text, clipped to
// maxChars. Implementations never return an error: failures degrade to a
// PageText with empty title/text.
type WebFetcher interface {
	Exec(ctx context.Context, url string, maxChars int) models.PageText
}

type FetcherType string

const (
	HTTPFetcherType        FetcherType = "http"
	ReadabilityFetcherType FetcherType = "readability"
	ChromedpFetcherType    FetcherType = "chromedp"
)

var ErrUnsupportedFetcher = errors.New("unsupported fetcher type")

// NewWebFetcher builds the configured fetcher. The zero value of fetcherType
// selects the plain HTTP fetcher.
func NewWebFetcher(fetcherType FetcherType, timeout time.Duration) (WebFetcher, error) {
	switch fetcherType {
	case HTTPFetcherType, "":
		return httpfetch.New(), nil
	case ReadabilityFetcherType:
		return readability.New(), nil
	case ChromedpFetcherType:
		return chromedp.New(timeout), nil
	default:
		return nil, ErrUnsupportedFetcher
	}
}
