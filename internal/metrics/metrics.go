// Package metrics registers the Prometheus collectors for the research
// pipeline. They are exposed through the /metrics endpoint of the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchRequests counts upstream search-engine requests by outcome.
	// Cache hits never reach the engine and are tracked separately.
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_search_requests_total",
		Help: "Search engine HTTP requests by outcome (ok, empty, error).",
	}, []string{"outcome"})

	// SearchCache counts cache lookups by result.
	SearchCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_search_cache_total",
		Help: "Search cache lookups by result (hit, miss).",
	}, []string{"result"})

	// PageFetches counts page downloads by outcome.
	PageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_page_fetches_total",
		Help: "Page fetches by outcome (ok, empty, error).",
	}, []string{"outcome"})

	// LLMRequests counts summarisation calls by outcome.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_llm_requests_total",
		Help: "LLM summarisation calls by outcome (ok, permission_denied, error).",
	}, []string{"outcome"})

	// ResearchDuration observes end-to-end pipeline latency.
	ResearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_research_duration_seconds",
		Help:    "End-to-end research pipeline duration.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
	})
)
