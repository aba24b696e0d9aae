// Package app wires configuration into the concrete pipeline pieces. Both
// the one-shot CLI command and the HTTP server build through here so they
// agree on backend selection.
package app

import (
	"github.com/mohammad-safakhou/scout/agents/researcher"
	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/provider"
	"github.com/mohammad-safakhou/scout/tools/web_fetch"
	"github.com/mohammad-safakhou/scout/tools/web_search"
	"github.com/mohammad-safakhou/scout/tools/web_search/cache"
)

// BuildAgent constructs the research agent from config: cache backend,
// search client, and page fetcher.
func BuildAgent(cfg *config.Config) (*researcher.Agent, error) {
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		store = cache.NewRedis(cfg.Cache.Redis.Addr(), cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
	default:
		store = cache.NewMemory(cfg.Cache.Capacity)
	}

	searcher, err := web_search.NewWebSearcher(web_search.DuckDuckGoProvider, store)
	if err != nil {
		return nil, err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Fetcher), cfg.Fetch.Timeout)
	if err != nil {
		return nil, err
	}
	return researcher.New(searcher, fetcher), nil
}

// BuildProvider constructs the configured LLM client.
func BuildProvider(cfg *config.Config) (provider.Provider, error) {
	return provider.NewProvider(
		provider.Client(cfg.LLM.Provider),
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Timeout,
	)
}
