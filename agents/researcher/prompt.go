package researcher

import (
	"fmt"
	"strings"
)

// System instruction for the single summarisation call. The citation format
// here must stay in sync with what downstream consumers render verbatim.
const summariseSystem = "You are a research assistant. Synthesise a clear, cited answer from the " +
	"web sources provided by the user.\n\n" +
	"Rules:\n" +
	"- Use ONLY the information in the provided sources. " +
	"Do not add knowledge from your training data.\n" +
	"- If sources are insufficient or contradictory, say so explicitly.\n" +
	"- Cite claims with numbered references like [1], [2].\n" +
	"- End with a 'References' section listing each source as:\n" +
	"  [N] Title — domain — URL\n" +
	"- Keep the answer concise (3–6 short paragraphs) unless the mode is 'deep'.\n" +
	"- Use plain text. Do not use Markdown symbols like **, __, or #."

// Source is one numbered entry handed to the summarisation prompt. Index is
// 1-based and its order carries through to the final citation numbering.
type Source struct {
	Index int
	Title string
	URL   string
	Text  string
}

// buildPrompt renders the user message containing every source followed by
// the original (uncleaned) query and the answering instruction.
func buildPrompt(query string, sources []Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\n", query)
	for _, s := range sources {
		fmt.Fprintf(&b, "[%d] %s\nURL: %s\n%s\n\n", s.Index, s.Title, s.URL, s.Text)
	}
	b.WriteString("\nWrite a concise, cited answer using only the sources above. " +
		"Follow the rules in the system prompt.")
	return b.String()
}
