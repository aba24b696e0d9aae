package models

// PageText is the readable content extracted from a fetched page. Text is
// clipped to the caller's budget at extraction time. A failed fetch yields a
// PageText with empty Title and Text — fetchers never surface errors.
type PageText struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
