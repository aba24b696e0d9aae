package duckduckgo

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/mohammad-safakhou/scout/internal/helpers"
	"github.com/mohammad-safakhou/scout/tools/web_search/models"
)

// The results page marks each hit with a "result__a" anchor (title + href)
// and a "result__snippet" element. The parser walks the token stream with a
// three-state machine and a per-state nesting depth, so markup nested inside
// a matched element (bold terms in titles, spans in snippets) does not close
// it early.
type parseState int

const (
	stateIdle parseState = iota
	stateTitle
	stateSnippet
)

// Void elements have no closing tag and must not bump the nesting depth.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

type resultParser struct {
	state   parseState
	depth   int
	url     string
	title   strings.Builder
	snippet strings.Builder
	results []models.Result
}

// parseResults consumes an HTML token stream and returns the search hits it
// recognises. Unknown markup yields fewer (possibly zero) results, never an
// error: a format change upstream degrades to an empty list.
func parseResults(r io.Reader) []models.Result {
	p := &resultParser{}
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way flush what we have.
			p.flush()
			return p.results
		case html.StartTagToken:
			name, attrs := tagAndAttrs(z)
			p.startTag(name, attrs)
		case html.SelfClosingTagToken:
			// No closing tag will follow; depth stays as-is.
		case html.EndTagToken:
			p.endTag()
		case html.TextToken:
			p.text(string(z.Text()))
		}
	}
}

func (p *resultParser) startTag(name string, attrs map[string]string) {
	if p.state != stateIdle {
		if !voidElements[name] {
			p.depth++
		}
		return
	}
	classes := strings.Fields(attrs["class"])
	switch {
	case contains(classes, "result__a"):
		// A new title anchor before the previous snippet closed means the
		// previous result had no snippet; emit it as-is first.
		p.flush()
		p.url = extractURL(attrs["href"])
		p.state = stateTitle
		p.depth = 1
	case contains(classes, "result__snippet"):
		p.snippet.Reset()
		p.state = stateSnippet
		p.depth = 1
	}
}

func (p *resultParser) endTag() {
	if p.state == stateIdle || p.depth == 0 {
		return
	}
	p.depth--
	if p.depth > 0 {
		return
	}
	if p.state == stateSnippet {
		p.flush()
	}
	p.state = stateIdle
}

func (p *resultParser) text(data string) {
	switch p.state {
	case stateTitle:
		p.title.WriteString(data)
	case stateSnippet:
		p.snippet.WriteString(data)
	}
}

// flush emits the in-progress result when it has both a URL and a title.
func (p *resultParser) flush() {
	title := strings.TrimSpace(p.title.String())
	if p.url != "" && title != "" {
		p.results = append(p.results, models.Result{
			URL:     p.url,
			Title:   title,
			Snippet: strings.TrimSpace(p.snippet.String()),
		})
	}
	p.url = ""
	p.title.Reset()
	p.snippet.Reset()
}

// extractURL resolves the engine's internal redirect form
// (/l/?uddg=<encoded>&rut=...) to the destination URL, and discards
// anything that does not end up as an absolute http(s) URL.
func extractURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.Contains(href, "/l/?") {
		switch {
		case strings.HasPrefix(href, "//"):
			href = "https:" + href
		case !strings.HasPrefix(href, "http"):
			href = "https://duckduckgo.com" + href
		}
		u, err := url.Parse(href)
		if err != nil {
			return ""
		}
		href = u.Query().Get("uddg")
	}
	if !helpers.IsAbsoluteHTTP(href) {
		return ""
	}
	return href
}

func tagAndAttrs(z *html.Tokenizer) (string, map[string]string) {
	name, hasAttr := z.TagName()
	attrs := map[string]string{}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return string(name), attrs
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
