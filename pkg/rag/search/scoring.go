package search

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}\b`),
	regexp.MustCompile(`\d+`),
}

// ExtractNumbers returns the numeric tokens of a query: three-digit tokens
// first, then any other digit run, without duplicates.
func ExtractNumbers(query string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range numberPatterns {
		for _, m := range p.FindAllString(query, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// NumberForms returns the token and, when different, its value without
// leading zeros, the form number_resolution is stored in.
func NumberForms(token string) []string {
	n, err := strconv.Atoi(token)
	if err != nil {
		return []string{token}
	}
	canonical := strconv.Itoa(n)
	if canonical == token {
		return []string{token}
	}
	return []string{token, canonical}
}

// Jaccard is |A∩B| / |A∪B| over the lowercase whitespace-separated words of
// a and b. Two empty inputs score 0.
func Jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// ClampSimilarity bounds a vector score to [0, 1]. Cosine distance ranges
// over [0, 2], so opposed vectors would otherwise score below zero.
func ClampSimilarity(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
