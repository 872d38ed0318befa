// Package slug turns free-form identifiers into kebab-case and normalizes
// titles for comparison.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug rewrites s as a kebab-case identifier. Diacritics are dropped,
// camelCase humps and runs of spaces, underscores, dots or dashes become a
// single dash, and anything else that is not a letter or digit is removed.
func Slug(s string) string {
	runes := []rune(norm.NFD.String(s))

	var b strings.Builder
	pendingDash := false
	for i, r := range runes {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case isSeparator(r):
			pendingDash = true
			continue
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			continue
		}

		if unicode.IsUpper(r) && b.Len() > 0 && humpStart(runes, i) {
			pendingDash = true
		}
		if pendingDash && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingDash = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Normalize returns s in Unicode normalization form C, so that text typed
// on systems that store decomposed characters compares equal to its
// composed spelling.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
}

// humpStart reports whether the upper-case rune at i begins a new word:
// either it follows a lower-case letter or digit, or it ends an acronym
// ("HTTPServer" splits before "Server").
func humpStart(runes []rune, i int) bool {
	prev := previousBase(runes, i)
	if prev < 0 {
		return false
	}
	p := runes[prev]
	if unicode.IsLower(p) || unicode.IsDigit(p) {
		return true
	}
	if unicode.IsUpper(p) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}

// previousBase returns the index of the nearest rune before i that is not
// a combining mark, or -1.
func previousBase(runes []rune, i int) int {
	for j := i - 1; j >= 0; j-- {
		if !unicode.Is(unicode.Mn, runes[j]) {
			return j
		}
	}
	return -1
}
