// Package variation widens keyword matching for Spanish text by generating
// orthographic variants of a search term: written-accent placement derived
// from stress rules, b/v substitutions and case forms.
package variation

import (
	"strings"
	"unicode"

	"resolution-rag-be/pkg/utils"
)

const (
	// maxAccentCombinations bounds the per-word accent product for phrases.
	maxAccentCombinations = 16
	// maxSubstitutionSites bounds the b/v cartesian product to 2^n forms.
	maxSubstitutionSites = 4
)

// Normalize lowercases the term, strips accents (keeping ñ) and collapses
// whitespace.
func Normalize(term string) string {
	lowered := strings.ToLower(strings.TrimSpace(term))
	return strings.Join(strings.Fields(utils.StripAccents(lowered)), " ")
}

// Expand returns the ordered variants of term. The first element is term
// itself and the second its normalized form; both positions are kept even
// when they are equal. The rest are accent/b-v variants followed by their
// capitalized, title-cased and upper-cased forms, without duplicates.
func Expand(term string) []string {
	normalized := Normalize(term)
	if normalized == "" {
		return []string{term}
	}

	seen := map[string]struct{}{normalized: {}}
	var variants []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	for _, accented := range accentCombinations(normalized) {
		for _, swapped := range substituteBV(accented) {
			add(swapped)
		}
	}

	base := append([]string{normalized}, variants...)
	for _, v := range base {
		add(capitalize(v))
	}
	for _, v := range base {
		add(titleCase(v))
	}
	for _, v := range base {
		add(strings.ToUpper(v))
	}

	out := make([]string, 0, len(variants)+2)
	out = append(out, term, normalized)
	for _, v := range variants {
		if v == term {
			continue
		}
		out = append(out, v)
	}
	return out
}

// accentCombinations crosses, word by word, the plain form with the form that
// carries a written accent.
func accentCombinations(phrase string) []string {
	combos := []string{""}
	for i, word := range strings.Fields(phrase) {
		forms := []string{word}
		if accented := Accentuate(word); accented != "" && accented != word {
			forms = append(forms, accented)
		}

		next := make([]string, 0, len(combos)*len(forms))
	fill:
		for _, prefix := range combos {
			for _, f := range forms {
				if i == 0 {
					next = append(next, f)
				} else {
					next = append(next, prefix+" "+f)
				}
				if len(next) >= maxAccentCombinations {
					break fill
				}
			}
		}
		combos = next
	}
	return combos
}

// substituteBV returns every combination of swapping b and v at the first
// maxSubstitutionSites occurrences, the unchanged input first.
func substituteBV(s string) []string {
	runesOf := []rune(s)
	var sites []int
	for i, r := range runesOf {
		if r == 'b' || r == 'v' {
			sites = append(sites, i)
			if len(sites) == maxSubstitutionSites {
				break
			}
		}
	}

	out := make([]string, 0, 1<<len(sites))
	for mask := 0; mask < 1<<len(sites); mask++ {
		buf := make([]rune, len(runesOf))
		copy(buf, runesOf)
		for bit, pos := range sites {
			if mask&(1<<bit) == 0 {
				continue
			}
			if buf[pos] == 'b' {
				buf[pos] = 'v'
			} else {
				buf[pos] = 'b'
			}
		}
		out = append(out, string(buf))
	}
	return out
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
