// Package researcher runs the bounded-cost research pipeline: decompose the
// question, search each sub-query, fetch the surviving pages, and make a
// single summarisation call. The LLM is invoked at most once per invocation;
// every retrieval failure before that degrades to fallback data instead of
// aborting the run.
package researcher

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mohammad-safakhou/scout/internal/helpers"
	"github.com/mohammad-safakhou/scout/internal/metrics"
	"github.com/mohammad-safakhou/scout/provider"
	"github.com/mohammad-safakhou/scout/tools/web_fetch"
	fmodels "github.com/mohammad-safakhou/scout/tools/web_fetch/models"
	"github.com/mohammad-safakhou/scout/tools/web_search"
	smodels "github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// Mode scales the breadth/depth trade-off: how many unique URLs to gather
// and how much text to keep per page.
type Mode struct {
	Sources      int
	SnippetChars int
}

// Named presets. Unknown mode names fall back to "default".
var modes = map[string]Mode{
	"quick":   {Sources: 3, SnippetChars: 800},
	"default": {Sources: 5, SnippetChars: 1200},
	"deep":    {Sources: 8, SnippetChars: 1500},
}

const (
	defaultCacheTTL = 180 * time.Second

	// maxAnswerChars caps the reply for chat-transport limits, with a
	// small safety buffer under the common 4096 ceiling.
	maxAnswerChars   = 4000
	truncationMarker = "\n\n(response truncated)"

	fallbackNoRetrieval = "(no text retrieved)"

	msgNoResults = "I couldn't find any search results for that query. " +
		"Please try rephrasing or try again later."
	msgPermissionDenied = "I don't have access to that resource (403). " +
		"Please check permissions / sharing settings."
	msgProviderFailed = "The AI provider failed to summarise the results. " +
		"Please try again in a moment."
)

// Options tune a single invocation. Zero values select the defaults.
type Options struct {
	// Mode is "quick", "default", or "deep".
	Mode string
	// ResearchID labels this invocation in the logs. Callers that report an
	// ID to their own users should pass it here so responses correlate with
	// pipeline logs; empty generates one.
	ResearchID string
	// CacheTTL is how long search results stay cached.
	CacheTTL time.Duration
	// DefaultSources / DefaultSnippetChars override the "default" mode's
	// preset, used to thread externally configured defaults through.
	DefaultSources      int
	DefaultSnippetChars int
}

// Agent wires the retrieval tools into the pipeline.
type Agent struct {
	searcher web_search.Searcher
	fetcher  web_fetch.WebFetcher
	logger   *log.Logger
}

// New builds a research agent over the given search and fetch tools.
func New(searcher web_search.Searcher, fetcher web_fetch.WebFetcher) *Agent {
	return &Agent{
		searcher: searcher,
		fetcher:  fetcher,
		logger:   log.New(os.Stderr, "[research] ", log.LstdFlags),
	}
}

// Research runs the full pipeline and returns a cited plain-text answer, or
// one of the fixed user-facing failure strings. It never returns an error:
// the only failures a caller can see originate from the single LLM call, and
// those are mapped to messages here.
func (a *Agent) Research(ctx context.Context, query string, prov provider.Provider, opts Options) string {
	start := time.Now()
	defer func() { metrics.ResearchDuration.Observe(time.Since(start).Seconds()) }()

	mode := a.selectMode(opts)
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	searchQuery := ToSearchQuery(query)
	subQueries := Decompose(searchQuery)
	researchID := opts.ResearchID
	if researchID == "" {
		researchID = uuid.NewString()
	}
	a.logger.Printf("[%s] query=%q search_query=%q mode=%+v sub_queries=%q",
		researchID, query, searchQuery, mode, subQueries)

	results := a.searchAll(ctx, subQueries, ttl, mode.Sources)
	if len(results) == 0 {
		a.logger.Printf("[%s] no search results", researchID)
		return msgNoResults
	}

	sources := a.assembleSources(ctx, results, mode.SnippetChars)
	a.logger.Printf("[%s] assembled %d sources for summarisation", researchID, len(sources))

	answer, err := prov.Complete(ctx,
		[]provider.Message{{Role: "user", Content: buildPrompt(query, sources)}},
		summariseSystem)
	if err != nil {
		if errors.Is(err, provider.ErrPermissionDenied) {
			metrics.LLMRequests.WithLabelValues("permission_denied").Inc()
			a.logger.Printf("[%s] permission denied by provider: %v", researchID, err)
			return msgPermissionDenied
		}
		metrics.LLMRequests.WithLabelValues("error").Inc()
		a.logger.Printf("[%s] summarisation call failed: %v", researchID, err)
		return msgProviderFailed
	}
	metrics.LLMRequests.WithLabelValues("ok").Inc()

	if t := helpers.Truncate(answer, maxAnswerChars); len(t) < len(answer) {
		answer = t + truncationMarker
	}
	return answer
}

func (a *Agent) selectMode(opts Options) Mode {
	name := opts.Mode
	mode, ok := modes[name]
	if !ok {
		name = "default"
		mode = modes[name]
	}
	if name == "default" {
		if opts.DefaultSources > 0 {
			mode.Sources = opts.DefaultSources
		}
		if opts.DefaultSnippetChars > 0 {
			mode.SnippetChars = opts.DefaultSnippetChars
		}
	}
	return mode
}

// searchAll fans out one search per sub-query, then merges the result lists
// preserving sub-query order, de-duplicating by exact URL (first occurrence
// wins) and capping at maxSources.
func (a *Agent) searchAll(ctx context.Context, subQueries []string, ttl time.Duration, maxSources int) []smodels.Result {
	perQuery := make([][]smodels.Result, len(subQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i, sq := range subQueries {
		g.Go(func() error {
			perQuery[i] = a.searcher.Search(gctx, sq, ttl, maxSources)
			return nil
		})
	}
	_ = g.Wait() // searches never return errors

	seen := make(map[string]bool)
	var merged []smodels.Result
	for _, results := range perQuery {
		for _, r := range results {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			merged = append(merged, r)
			if len(merged) >= maxSources {
				return merged
			}
		}
	}
	return merged
}

// assembleSources fetches every URL concurrently and builds the numbered
// source list. A failed or empty fetch falls back to the search snippet, and
// failing that to a fixed placeholder, so every slot is non-empty and the
// numbering stays aligned with discovery order.
func (a *Agent) assembleSources(ctx context.Context, results []smodels.Result, snippetChars int) []Source {
	pages := make([]fmodels.PageText, len(results))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range results {
		g.Go(func() error {
			pages[i] = a.fetcher.Exec(gctx, r.URL, snippetChars)
			return nil
		})
	}
	_ = g.Wait() // fetchers never return errors

	sources := make([]Source, 0, len(results))
	for i, r := range results {
		page := pages[i]

		text := strings.TrimSpace(page.Text)
		if text == "" {
			text = r.Snippet
		}
		if text == "" {
			text = fallbackNoRetrieval
		}

		title := strings.TrimSpace(page.Title)
		if title == "" {
			title = r.Title
		}
		if title == "" {
			title = helpers.Domain(r.URL)
		}

		sources = append(sources, Source{
			Index: i + 1,
			Title: title,
			URL:   r.URL,
			Text:  text,
		})
	}
	return sources
}
