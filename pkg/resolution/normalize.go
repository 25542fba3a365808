package resolution

import (
	"regexp"
	"strings"

	"resolution-rag-be/pkg/utils"
)

var (
	lineBreaks     = regexp.MustCompile(`[\n\r\f]`)
	repeatedSpaces = regexp.MustCompile(`\s{2,}`)
	ellipsisRun    = regexp.MustCompile(`…{2,}`)
	letterhead     = regexp.MustCompile(`(?i)^\s*ESPOCH ESCUELA SUPERIOR POLITÉCNICA DE CHIMBORAZO DIRECCIÓN DE SECRETARÍA GENERAL`)
)

// cleanPage flattens line breaks, collapses whitespace and drops the
// institutional letterhead printed at the top of every page.
func cleanPage(text string) string {
	text = lineBreaks.ReplaceAllString(strings.TrimSpace(text), " ")
	text = repeatedSpaces.ReplaceAllString(text, " ")
	text = letterhead.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// signatureDots marks runs of ellipses left by signature lines.
func signatureDots(text string) string {
	return ellipsisRun.ReplaceAllString(text, "FIRMA")
}

type replacement struct {
	pattern *regexp.Regexp
	with    string
}

var embedReplacements = []replacement{
	{regexp.MustCompile(`[^a-z0-9áéíóúüñ%.,:=()/\- ]`), ""},
	{regexp.MustCompile(`\.\s*-\s*`), "."},
	{regexp.MustCompile(`-{2,}`), "-"},
	{regexp.MustCompile(`\.{2,}`), "."},
	{regexp.MustCompile(`\(\.\)`), ""},
	{regexp.MustCompile(`/{2,}`), "/"},
	{regexp.MustCompile(`\s{2,}`), " "},
	{regexp.MustCompile(`;`), ","},
}

// NormalizeForEmbedding lowercases text, strips accents except ñ, removes
// characters outside the whitelist and collapses repeated punctuation.
func NormalizeForEmbedding(text string) string {
	text = utils.StripAccents(strings.ToLower(text))
	for _, r := range embedReplacements {
		text = r.pattern.ReplaceAllString(text, r.with)
	}
	return text
}
