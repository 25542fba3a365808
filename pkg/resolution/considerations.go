package resolution

import (
	"regexp"
	"strings"
)

var considerationClause = regexp.MustCompile(`(?i)Que,(.*?)(;|:|,)`)

// SplitParagraphs starts a new paragraph at every "Que," and drops blanks.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "Que,", "\nQue,")

	var paragraphs []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// ExtractConsiderations returns, for each "Que," clause, the text up to the
// next ';', ':' or ','.
func ExtractConsiderations(text string) []string {
	var out []string
	for _, paragraph := range SplitParagraphs(text) {
		for _, m := range considerationClause.FindAllStringSubmatch(paragraph, -1) {
			if c := strings.TrimSpace(m[1]); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
