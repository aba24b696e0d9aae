package httpfetch

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/mohammad-safakhou/scout/internal/helpers"
)

// Elements whose subtree is page furniture rather than content. A depth
// counter (not a flag) handles the same element nested inside itself in
// malformed markup.
var skipTags = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true,
	"header": true, "aside": true, "noscript": true, "form": true,
}

type textExtractor struct {
	skipDepth int
	inTitle   bool
	title     strings.Builder
	chunks    []string
}

// extractText streams an HTML document and returns its document title plus
// the visible body text, joined with single spaces and clipped to maxChars.
func extractText(r io.Reader, maxChars int) (title, text string) {
	e := &textExtractor{}
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			e.startTag(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			e.endTag(string(name))
		case html.TextToken:
			e.text(string(z.Text()))
		}
	}
	joined := helpers.Truncate(strings.Join(e.chunks, " "), maxChars)
	return strings.TrimSpace(e.title.String()), joined
}

func (e *textExtractor) startTag(name string) {
	switch {
	case skipTags[name]:
		e.skipDepth++
	case name == "title" && e.skipDepth == 0:
		e.inTitle = true
	}
}

func (e *textExtractor) endTag(name string) {
	if skipTags[name] && e.skipDepth > 0 {
		e.skipDepth--
	}
	if name == "title" {
		e.inTitle = false
	}
}

func (e *textExtractor) text(data string) {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return
	}
	if e.inTitle {
		e.title.WriteString(trimmed)
	} else if e.skipDepth == 0 {
		e.chunks = append(e.chunks, trimmed)
	}
}
