// Package normalize canonicalizes free-text names before any comparison or
// storage.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize trims text, collapses runs of whitespace to single spaces and
// title-cases every word. Words are split on whitespace only, so
// "jean-luc" becomes "Jean-luc". Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeTitle(&b, w)
	}
	return b.String()
}

func writeTitle(b *strings.Builder, word string) {
	lower := strings.ToLower(word)
	r, size := utf8.DecodeRuneInString(lower)
	b.WriteRune(unicode.ToTitle(r))
	b.WriteString(lower[size:])
}
