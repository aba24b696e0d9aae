package researcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mohammad-safakhou/scout/provider"
	fmodels "github.com/mohammad-safakhou/scout/tools/web_fetch/models"
	smodels "github.com/mohammad-safakhou/scout/tools/web_search/models"
)

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]smodels.Result
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ time.Duration, maxResults int) []smodels.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	results := f.results[query]
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]fmodels.PageText
	calls int
}

func (f *fakeFetcher) Exec(_ context.Context, url string, _ int) fmodels.PageText {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if page, ok := f.pages[url]; ok {
		return page
	}
	return fmodels.PageText{URL: url}
}

type fakeProvider struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
	lastSystem string
}

func (f *fakeProvider) Complete(_ context.Context, messages []provider.Message, system string) (string, error) {
	f.calls++
	f.lastPrompt = messages[len(messages)-1].Content
	f.lastSystem = system
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func TestResearch_DeduplicatesAcrossSubQueries(t *testing.T) {
	shared := smodels.Result{URL: "https://shared.example.com/page", Title: "Shared", Snippet: "s"}
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"rust": {shared, {URL: "https://rust.example.com", Title: "Rust", Snippet: "r"}},
		"go":   {shared, {URL: "https://go.example.com", Title: "Go", Snippet: "g"}},
	}}
	fetcher := &fakeFetcher{}
	prov := &fakeProvider{answer: "fine"}

	agent := New(searcher, fetcher)
	agent.Research(context.Background(), "rust vs go", prov, Options{Mode: "default"})

	if n := strings.Count(prov.lastPrompt, "URL: https://shared.example.com/page"); n != 1 {
		t.Errorf("shared URL appears %d times in prompt, want 1", n)
	}
	// First occurrence wins: the shared result came first in the first
	// sub-query's list, so it must be source [1].
	idx := strings.Index(prov.lastPrompt, "[1] Shared")
	if idx == -1 {
		t.Errorf("shared result should be source [1], prompt:\n%s", prov.lastPrompt)
	}
	if fetcher.calls != 3 {
		t.Errorf("fetched %d pages, want 3 unique URLs", fetcher.calls)
	}
}

func TestResearch_NoResultsShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{}}
	fetcher := &fakeFetcher{}
	prov := &fakeProvider{answer: "should not be called"}

	agent := New(searcher, fetcher)
	got := agent.Research(context.Background(), "anything at all", prov, Options{})

	if got != msgNoResults {
		t.Errorf("got %q, want the fixed no-results message", got)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times after zero results", fetcher.calls)
	}
	if prov.calls != 0 {
		t.Errorf("provider called %d times after zero results", prov.calls)
	}
}

func TestResearch_FetchFallbacks(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"topic": {
			{URL: "https://a.example.com", Title: "A", Snippet: "snippet A"},
			{URL: "https://b.example.com", Title: "B", Snippet: ""},
			{URL: "https://c.example.com", Title: "C", Snippet: "snippet C"},
		},
	}}
	// a: fetch fails (empty page) -> snippet; b: fetch fails and no
	// snippet -> placeholder; c: fetch succeeds -> page text wins.
	fetcher := &fakeFetcher{pages: map[string]fmodels.PageText{
		"https://c.example.com": {URL: "https://c.example.com", Title: "C fetched", Text: "full text of c"},
	}}
	prov := &fakeProvider{answer: "ok"}

	agent := New(searcher, fetcher)
	agent.Research(context.Background(), "topic", prov, Options{})

	prompt := prov.lastPrompt
	if !strings.Contains(prompt, "snippet A") {
		t.Errorf("missing snippet fallback for source A:\n%s", prompt)
	}
	if !strings.Contains(prompt, fallbackNoRetrieval) {
		t.Errorf("missing placeholder for source B:\n%s", prompt)
	}
	if !strings.Contains(prompt, "full text of c") {
		t.Errorf("missing fetched text for source C:\n%s", prompt)
	}
	if !strings.Contains(prompt, "C fetched") {
		t.Errorf("fetched title should replace result title:\n%s", prompt)
	}
}

func TestResearch_PermissionDenied(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"topic": {{URL: "https://a.example.com", Title: "A", Snippet: "s"}},
	}}
	prov := &fakeProvider{err: fmt.Errorf("wrapped: %w", provider.ErrPermissionDenied)}

	agent := New(searcher, &fakeFetcher{})
	got := agent.Research(context.Background(), "topic", prov, Options{})

	if got != msgPermissionDenied {
		t.Errorf("got %q, want the fixed permission-denied message", got)
	}
}

func TestResearch_GenericProviderFailure(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"topic": {{URL: "https://a.example.com", Title: "A", Snippet: "s"}},
	}}
	prov := &fakeProvider{err: errors.New("upstream exploded")}

	agent := New(searcher, &fakeFetcher{})
	got := agent.Research(context.Background(), "topic", prov, Options{})

	if got != msgProviderFailed {
		t.Errorf("got %q, want the fixed provider-failure message", got)
	}
}

func TestResearch_TruncatesLongAnswers(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"topic": {{URL: "https://a.example.com", Title: "A", Snippet: "s"}},
	}}
	prov := &fakeProvider{answer: strings.Repeat("x", maxAnswerChars+500)}

	agent := New(searcher, &fakeFetcher{})
	got := agent.Research(context.Background(), "topic", prov, Options{})

	if !strings.HasSuffix(got, truncationMarker) {
		t.Errorf("truncated answer missing marker")
	}
	if len(got) != maxAnswerChars+len(truncationMarker) {
		t.Errorf("answer length %d, want %d", len(got), maxAnswerChars+len(truncationMarker))
	}
}

func TestResearch_LogsUnderCallerResearchID(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"topic": {{URL: "https://a.example.com", Title: "A", Snippet: "s"}},
	}}
	prov := &fakeProvider{answer: "ok"}

	agent := New(searcher, &fakeFetcher{})
	var buf bytes.Buffer
	agent.logger = log.New(&buf, "[research] ", 0)

	agent.Research(context.Background(), "topic", prov, Options{ResearchID: "rid-1234"})

	if !strings.Contains(buf.String(), "[rid-1234]") {
		t.Errorf("log output missing caller's research ID:\n%s", buf.String())
	}
}

func TestResearch_TruncatesMultibyteAnswerCleanly(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"topic": {{URL: "https://a.example.com", Title: "A", Snippet: "s"}},
	}}
	prov := &fakeProvider{answer: strings.Repeat("€", maxAnswerChars+500)}

	agent := New(searcher, &fakeFetcher{})
	got := agent.Research(context.Background(), "topic", prov, Options{})

	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatalf("truncated answer missing marker")
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated answer is invalid UTF-8")
	}
	body := strings.TrimSuffix(got, truncationMarker)
	if n := utf8.RuneCountInString(body); n != maxAnswerChars {
		t.Errorf("answer body is %d characters, want %d", n, maxAnswerChars)
	}
}

func TestResearch_ModeCapsSources(t *testing.T) {
	var results []smodels.Result
	for i := 0; i < 10; i++ {
		results = append(results, smodels.Result{
			URL:   fmt.Sprintf("https://site%d.example.com", i),
			Title: fmt.Sprintf("Site %d", i),
		})
	}
	searcher := &fakeSearcher{results: map[string][]smodels.Result{"topic": results}}
	fetcher := &fakeFetcher{}
	prov := &fakeProvider{answer: "ok"}

	agent := New(searcher, fetcher)
	agent.Research(context.Background(), "topic", prov, Options{Mode: "quick"})

	if fetcher.calls != 3 {
		t.Errorf("quick mode fetched %d pages, want 3", fetcher.calls)
	}
}

func TestResearch_DefaultModeOverrides(t *testing.T) {
	var results []smodels.Result
	for i := 0; i < 10; i++ {
		results = append(results, smodels.Result{
			URL:   fmt.Sprintf("https://site%d.example.com", i),
			Title: fmt.Sprintf("Site %d", i),
		})
	}
	searcher := &fakeSearcher{results: map[string][]smodels.Result{"topic": results}}
	fetcher := &fakeFetcher{}
	prov := &fakeProvider{answer: "ok"}

	agent := New(searcher, fetcher)
	agent.Research(context.Background(), "topic", prov, Options{
		Mode:           "default",
		DefaultSources: 2,
	})

	if fetcher.calls != 2 {
		t.Errorf("override fetched %d pages, want 2", fetcher.calls)
	}
}

func TestResearch_OriginalQueryInPrompt(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]smodels.Result{
		"Python asyncio": {{URL: "https://a.example.com", Title: "A", Snippet: "s"}},
	}}
	prov := &fakeProvider{answer: "ok"}

	agent := New(searcher, &fakeFetcher{})
	agent.Research(context.Background(), "tell me about Python asyncio", prov, Options{})

	// The cleaned form drives the search, but the prompt carries the
	// user's original wording.
	if !strings.Contains(prov.lastPrompt, "Query: tell me about Python asyncio") {
		t.Errorf("prompt should contain the original query:\n%s", prov.lastPrompt)
	}
	if prov.lastSystem == "" {
		t.Error("system instruction missing")
	}
}
