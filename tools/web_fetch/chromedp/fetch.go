// Package chromedp fetches pages through a headless browser so JS-rendered
// content becomes visible before extraction. It is opt-in via config; the
// plain HTTP fetcher remains the default because headless rendering costs an
// order of magnitude more per page.
package chromedp

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"

	"github.com/mohammad-safakhou/scout/internal/helpers"
	"github.com/mohammad-safakhou/scout/internal/metrics"
	"github.com/mohammad-safakhou/scout/tools/web_fetch/models"
)

type Fetch struct {
	Timeout time.Duration

	logger *log.Logger
}

func New(timeout time.Duration) *Fetch {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetch{
		Timeout: timeout,
		logger:  log.New(os.Stderr, "[fetch-chromedp] ", log.LstdFlags),
	}
}

// Exec renders url headlessly, extracts the article text, and clips it to
// maxChars. Same degradation contract as the other fetchers: failures yield
// an empty PageText, never an error.
func (f *Fetch) Exec(ctx context.Context, rawURL string, maxChars int) models.PageText {
	empty := models.PageText{URL: rawURL}
	if strings.TrimSpace(rawURL) == "" {
		return empty
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	html, err := fetchHTML(ctx, rawURL)
	if err != nil {
		f.logger.Printf("render failed for %s: %v", rawURL, err)
		metrics.PageFetches.WithLabelValues("error").Inc()
		return empty
	}

	article, err := readability.FromReader(strings.NewReader(html), mustParseURL(rawURL))
	if err != nil {
		f.logger.Printf("extraction failed for %s: %v", rawURL, err)
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

func fetchHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
