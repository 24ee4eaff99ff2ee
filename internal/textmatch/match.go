// Package textmatch implements the quote matching policy: providers may
// jitter whitespace or punctuation while quoting, so evidence quotes are
// compared after normalization instead of byte-for-byte.
package textmatch

import (
	"strings"
	"unicode"
)

// Normalize lowercases the text, drops punctuation (ASCII and CJK) and
// collapses all whitespace away. The result is only used for
// containment checks, never shown to users.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Contains reports whether quote appears inside text under the
// normalized comparison. Empty quotes never match.
func Contains(text, quote string) bool {
	nq := Normalize(quote)
	if nq == "" {
		return false
	}
	return strings.Contains(Normalize(text), nq)
}
