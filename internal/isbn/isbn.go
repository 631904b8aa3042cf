// Package isbn provides normalization and checksum validation for ISBN-10 and ISBN-13 identifiers.
package isbn

import "strings"

// Normalize uppercases the input and strips every character that is not a
// digit or 'X'. It is total: any input yields a (possibly empty) candidate
// string, which must still pass Valid before being trusted.
func Normalize(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether a normalized string is a well-formed ISBN-10 or
// ISBN-13. Callers must Normalize first; Valid does no cleanup of its own.
func Valid(normalized string) bool {
	switch len(normalized) {
	case 10:
		return validISBN10(normalized)
	case 13:
		return validISBN13(normalized)
	default:
		return false
	}
}

// validISBN10 checks the mod-11 weighted checksum. 'X' is worth 10 and is
// only legal as the final check digit.
func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var value int
		switch {
		case c >= '0' && c <= '9':
			value = int(c - '0')
		case c == 'X' && i == 9:
			value = 10
		default:
			return false
		}
		sum += value * (10 - i)
	}
	return sum%11 == 0
}

// validISBN13 checks the mod-10 checksum with alternating 1/3 weights.
// All thirteen characters must be digits.
func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}
	return sum%10 == 0
}
