package models

// Result is a single search engine hit. URL is always an absolute http(s)
// URL; the search client discards anything it cannot resolve to one.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
