package researcher

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/scout/internal/helpers"
)

// Ad hoc thresholds carried over from the original tuning; kept as named
// constants rather than inferring stricter semantics.
const (
	maxSearchQueryLen  = 80
	andSplitMinQuery   = 40
	andSplitMinSide    = 10
	convPrefixMaxPasses = 3
)

// Conversational lead-ins that add no value to a keyword search.
var convPrefix = regexp.MustCompile(`(?i)^(?:give\s+me|tell\s+me|show\s+me|find\s+me|can\s+you|please\s+|i\s+want\s+to\s+know|what(?:'s|\s+is|\s+are)|\w+\s+me\s+)\s*`)

// Filler noun-phrases ("a summary of", "an overview of", ...).
var fillerPhrase = regexp.MustCompile(`(?i)\b(?:a\s+summary\s+of|an?\s+overview\s+of|some\s+info(?:rmation)?\s+(?:about|on)|info(?:rmation)?\s+(?:about|on))\b`)

var leadingArticle = regexp.MustCompile(`(?i)^(?:about|the)\s+`)

var multiSpace = regexp.MustCompile(`\s+`)

// Vague temporal references get rewritten to the current year so the engine
// favours recent pages over a conversational phrase it cannot match.
var temporalRefs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bthis\s+week\b`),
	regexp.MustCompile(`(?i)\bthis\s+month\b`),
	regexp.MustCompile(`(?i)\bthis\s+year\b`),
	regexp.MustCompile(`(?i)\btoday\b`),
	regexp.MustCompile(`(?i)\bright\s+now\b`),
}

// ToSearchQuery converts a natural-language question into a terse keyword
// search string. Long conversational strings can trigger the engine's bot
// detection, so lead-ins and filler are stripped and the result is capped.
//
//	"tell me about Python asyncio"                       → "Python asyncio"
//	"give me a summary of the top AI news for this week" → "top AI news 2026"
func ToSearchQuery(text string) string {
	return toSearchQueryAt(text, time.Now())
}

// toSearchQueryAt is the deterministic core; now supplies the year used for
// temporal rewrites.
func toSearchQueryAt(text string, now time.Time) string {
	q := strings.TrimSpace(text)

	// Nested lead-ins ("can you tell me ...") need more than one pass.
	for i := 0; i < convPrefixMaxPasses; i++ {
		cleaned := strings.TrimSpace(convPrefix.ReplaceAllString(q, ""))
		if cleaned == q {
			break
		}
		q = cleaned
	}

	q = strings.TrimSpace(leadingArticle.ReplaceAllString(q, ""))
	q = strings.TrimSpace(fillerPhrase.ReplaceAllString(q, ""))
	q = strings.TrimSpace(multiSpace.ReplaceAllString(q, " "))

	year := strconv.Itoa(now.Year())
	for _, re := range temporalRefs {
		q = re.ReplaceAllString(q, year)
	}

	return helpers.Truncate(q, maxSearchQueryLen)
}

// Decompose splits a query into 1–3 sub-queries with simple rules, avoiding
// an LLM call:
//
//   - "X vs Y" / "X versus Y"   → each side separately
//   - long query with " and "   → whole query plus each half
//   - everything else           → the query itself
//
// The "vs" split takes precedence. The returned list is de-duplicated and
// never empty.
func Decompose(query string) []string {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)

	for _, sep := range []string{" vs ", " versus "} {
		if idx := strings.Index(lower, sep); idx != -1 {
			left := strings.TrimSpace(q[:idx])
			right := strings.TrimSpace(q[idx+len(sep):])
			if left != "" && right != "" {
				return dedupe([]string{left, right})
			}
		}
	}

	if strings.Contains(lower, " and ") && len(q) > andSplitMinQuery {
		idx := strings.Index(lower, " and ")
		left := strings.TrimSpace(q[:idx])
		right := strings.TrimSpace(q[idx+len(" and "):])
		if len(left) > andSplitMinSide && len(right) > andSplitMinSide {
			return dedupe([]string{q, left, right})
		}
	}

	return []string{q}
}

func dedupe(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := queries[:0]
	for _, q := range queries {
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}
