// Package textutil normalises the free-text fields typed into the engines.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Separator is the field separator of the flat files.
const Separator = ","

var folder = cases.Fold()

// Clean trims surrounding whitespace and normalises s to NFC so that the
// same name typed on two terminals compares equal.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// HasSeparator reports whether s would break a non-trailing flat-file field.
func HasSeparator(s string) bool {
	return strings.Contains(s, Separator)
}

// HasControl reports whether s holds a line break or another control
// character. Either would split or corrupt a flat-file row.
func HasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// StripControl replaces every control character in s with a space and
// cleans the result.
func StripControl(s string) string {
	return Clean(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Fold returns the case-folded, NFC form of s.
func Fold(s string) string {
	return folder.String(Clean(s))
}
