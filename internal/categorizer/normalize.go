package categorizer

import (
	"strings"
	"unicode"
)

// Normalize lowercases raw and drops every rune that is not a letter, number
// (including "½" and "²") or whitespace. Whitespace is kept as is, so
// "Uber  *Trip" becomes "uber  trip".
// Empty or all-punctuation input yields "".
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeAll applies Normalize to every element, preserving order.
func NormalizeAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = Normalize(s)
	}
	return out
}
