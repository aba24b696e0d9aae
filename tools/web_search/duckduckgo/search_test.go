package duckduckgo

import (
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammad-safakhou/scout/internal/httpx"
	"github.com/mohammad-safakhou/scout/tools/web_search/cache"
)

const sampleHTML = `
<div class="result">
  <a class="result__a" href="https://one.example.com">One</a>
  <a class="result__snippet">first snippet</a>
</div>
<div class="result">
  <a class="result__a" href="https://two.example.com">Two</a>
  <a class="result__snippet">second snippet</a>
</div>
<div class="result">
  <a class="result__a" href="https://three.example.com">Three</a>
  <a class="result__snippet">third snippet</a>
</div>`

func newTestClient(endpoint string, store cache.Store) *Client {
	c := New(store)
	c.Endpoint = endpoint
	c.Retry = httpx.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	return c
}

func TestSearch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "golang testing" {
			t.Errorf("query param = %q", q)
		}
		fmt.Fprint(w, sampleHTML)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results := c.Search(context.Background(), "golang testing", time.Minute, 10)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].URL != "https://one.example.com" || results[0].Snippet != "first snippet" {
		t.Errorf("first result = %+v", results[0])
	}
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleHTML)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results := c.Search(context.Background(), "anything", time.Minute, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestSearch_CacheAvoidsSecondRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, sampleHTML)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, cache.NewMemory(16))
	first := c.Search(context.Background(), "cached query", time.Minute, 10)
	second := c.Search(context.Background(), "cached query", time.Minute, 10)

	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
	if len(first) != len(second) {
		t.Errorf("cached results differ: %d vs %d", len(first), len(second))
	}
	// Normalisation: same query with different case/whitespace shares the entry.
	c.Search(context.Background(), "  Cached QUERY ", time.Minute, 10)
	if hits.Load() != 1 {
		t.Errorf("normalised query missed the cache, server hit %d times", hits.Load())
	}
}

func TestSearch_ExpiredEntryRefetches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, sampleHTML)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, cache.NewMemory(16))
	c.Search(context.Background(), "expiring", 20*time.Millisecond, 10)
	time.Sleep(30 * time.Millisecond)
	c.Search(context.Background(), "expiring", 20*time.Millisecond, 10)

	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2 after expiry", hits.Load())
	}
}

func TestSearch_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results := c.Search(context.Background(), "missing", time.Minute, 10)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (no retry on 4xx)", hits.Load())
	}
}

func TestSearch_ServerErrorRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results := c.Search(context.Background(), "flaky", time.Minute, 10)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3 (exhausted retries)", hits.Load())
	}
}

func TestSearch_ServerErrorThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sampleHTML)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results := c.Search(context.Background(), "recovers", time.Minute, 10)
	if len(results) != 3 {
		t.Errorf("got %d results after recovery, want 3", len(results))
	}
}

func TestSearch_GzipResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		fmt.Fprint(gz, sampleHTML)
		gz.Close()
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	results := c.Search(context.Background(), "compressed", time.Minute, 10)
	if len(results) != 3 {
		t.Fatalf("got %d results from gzip body, want 3", len(results))
	}
}

func TestSearch_EmptyResponseCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html><body>no results markup</body></html>")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, cache.NewMemory(16))
	c.Search(context.Background(), "nothing", time.Minute, 10)
	c.Search(context.Background(), "nothing", time.Minute, 10)
	if hits.Load() != 1 {
		t.Errorf("empty result set not cached, server hit %d times", hits.Load())
	}
}
