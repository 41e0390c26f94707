// Package trigram builds character trigram transition models and runs the
// iterative automaton that expands a seed string with such a model.
//
// All text is normalized before it reaches a model: lowercase ASCII letters,
// ASCII digits and whitespace are kept, everything else is dropped.
package trigram

import (
	"strings"
	"unicode"
)

// Normalize lowercases text and removes every character that is not a
// lowercase ASCII letter, an ASCII digit or whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		r = unicode.ToLower(r)
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keep(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 0x1c && r <= 0x1f:
		// file, group, record and unit separators count as whitespace
		return true
	default:
		return unicode.IsSpace(r)
	}
}
