package web_search

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad-safakhou/scout/tools/web_search/cache"
	"github.com/mohammad-safakhou/scout/tools/web_search/duckduckgo"
	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// Searcher resolves a keyword query to ranked results. Implementations
// absorb their own failures: a broken upstream yields an empty list, never
// an error, so the research pipeline can always proceed.
type Searcher interface {
	Search(ctx context.Context, query string, ttl time.Duration, maxResults int) []models.Result
}

type Provider string

const (
	DuckDuckGoProvider Provider = "duckduckgo"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

// NewWebSearcher builds the configured search backend around the given
// cache store.
func NewWebSearcher(provider Provider, store cache.Store) (Searcher, error) {
	switch provider {
	case DuckDuckGoProvider:
		return duckduckgo.New(store), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
