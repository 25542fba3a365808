package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Private-use runes keep ñ/Ñ intact while combining marks are removed.
const (
	enyeLower = "\uE000"
	enyeUpper = "\uE001"
)

// StripAccents removes diacritics from s while preserving ñ and Ñ.
func StripAccents(s string) string {
	s = strings.ReplaceAll(s, "ñ", enyeLower)
	s = strings.ReplaceAll(s, "Ñ", enyeUpper)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	out = strings.ReplaceAll(out, enyeLower, "ñ")
	return strings.ReplaceAll(out, enyeUpper, "Ñ")
}
