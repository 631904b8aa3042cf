// Package normalize provides utilities for canonicalizing free text before comparison.
package normalize

import (
	"regexp"
	"strings"
)

// whitespaceRegex collapses internal whitespace runs to a single space.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Text canonicalizes a string for equality-based matching: lowercase, trim,
// collapse whitespace, then strip everything outside [a-z0-9 ]. The result is
// for comparison only, never for display.
func Text(s string) string {
	s = strings.ToLower(strings.TrimSpace(sanitizeString(s)))
	s = whitespaceRegex.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether two strings match after canonicalization.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}

// sanitizeString removes null bytes, which upstream HTML and JSON sources
// occasionally embed in strings.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
