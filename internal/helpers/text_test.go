package helpers

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		s    string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"", 5, ""},
		{"hello", 0, ""},
		{"hello", -1, ""},
		{"héllo", 2, "hé"},
		{"日本語テキスト", 3, "日本語"},
		{strings.Repeat("€", 50), 27, strings.Repeat("€", 27)},
	}
	for _, tc := range cases {
		got := Truncate(tc.s, tc.max)
		if got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.s, tc.max, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) produced invalid UTF-8: %q", tc.s, tc.max, got)
		}
	}
}
