// Package duckduckgo resolves keyword queries against DuckDuckGo's public
// HTML endpoint — no API key required. Results are cached per normalised
// query so repeated lookups within the TTL never touch the network.
//
// Caveat: the endpoint's markup is not a stable contract. When it changes,
// Search starts returning empty lists and logs a parse hint; it never fails.
package duckduckgo

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mohammad-safakhou/scout/internal/httpx"
	"github.com/mohammad-safakhou/scout/internal/metrics"
	"github.com/mohammad-safakhou/scout/tools/web_search/cache"
	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

const (
	defaultEndpoint = "https://html.duckduckgo.com/html/"
	maxRetries      = 3
	baseDelay       = 1 * time.Second
)

// Client scrapes DuckDuckGo search results. Endpoint and Retry are exported
// so tests can point the client at a fixture server with tiny delays.
type Client struct {
	Endpoint string
	Retry    httpx.RetryPolicy

	cache  cache.Store
	client *http.Client
	logger *log.Logger
}

// New builds a search client around the given cache store. A nil store
// disables caching entirely (used by one-shot CLI runs with no server).
func New(store cache.Store) *Client {
	return &Client{
		Endpoint: defaultEndpoint,
		Retry:    httpx.RetryPolicy{MaxAttempts: maxRetries, BaseDelay: baseDelay},
		cache:    store,
		client:   httpx.NewClient(httpx.DefaultTimeout),
		logger:   log.New(os.Stderr, "[search] ", log.LstdFlags),
	}
}

// Search returns up to maxResults hits for query, serving from cache while
// entries are fresher than ttl. It never returns an error: any unrecoverable
// failure is logged and yields an empty list, which is cached too.
func (c *Client) Search(ctx context.Context, query string, ttl time.Duration, maxResults int) []models.Result {
	key := cache.Key(query)
	if c.cache != nil {
		if results, ok := c.cache.Get(ctx, key); ok {
			metrics.SearchCache.WithLabelValues("hit").Inc()
			return results
		}
		metrics.SearchCache.WithLabelValues("miss").Inc()
	}

	results := c.searchUpstream(ctx, query, maxResults)

	if c.cache != nil {
		c.cache.Set(ctx, key, results, ttl)
	}
	return results
}

func (c *Client) searchUpstream(ctx context.Context, query string, maxResults int) []models.Result {
	endpoint := fmt.Sprintf("%s?q=%s&kl=us-en", c.Endpoint, url.QueryEscape(query))

	var body []byte
	err := c.Retry.Do(ctx, func() error {
		req, err := httpx.NewRequest(ctx, endpoint)
		if err != nil {
			return httpx.Permanent(err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Printf("search network error for %q: %v", query, err)
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			serr := &httpx.StatusError{Code: resp.StatusCode, URL: endpoint}
			if httpx.IsClientError(serr) {
				// 4xx is permanent; retrying will not help.
				c.logger.Printf("search http %d for %q", resp.StatusCode, query)
				return httpx.Permanent(serr)
			}
			c.logger.Printf("search http %d for %q, retrying", resp.StatusCode, query)
			return serr
		}
		body, err = httpx.ReadBody(resp, httpx.MaxDownloadBytes)
		return err
	})
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil
	}

	results := parseResults(bytes.NewReader(body))
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if len(results) == 0 {
		metrics.SearchRequests.WithLabelValues("empty").Inc()
		c.logger.Printf("search returned 0 parsed results for %q (HTML structure may have changed)", query)
	} else {
		metrics.SearchRequests.WithLabelValues("ok").Inc()
	}
	return results
}
