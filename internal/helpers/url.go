// Package helpers holds small URL and text utilities shared by the search
// client, the fetchers, and the research orchestrator.
package helpers

import (
	"net/url"
	"strings"
)

// IsAbsoluteHTTP reports whether raw parses to an absolute http(s) URL.
// The search parser discards anything else (relative links, javascript:,
// engine-internal paths).
func IsAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Domain returns the bare host of a URL, e.g. "en.wikipedia.org". Falls back
// to the input when it cannot be parsed, so callers always get something
// printable for a reference line.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
