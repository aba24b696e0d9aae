package helpers

// Truncate cuts s to at most max runes. Counting runes rather than bytes
// keeps a multi-byte character straddling the limit intact, so truncated
// queries, page text, and answers stay valid UTF-8.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		n++
		if n > max {
			return s[:i]
		}
	}
	return s
}
