// Package resolution extracts the structure of an institutional resolution
// PDF: its identifier, the operative clause ("RESUELVE"), the "Que,"
// considerations and the copy-recipients list.
package resolution

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Connective joins the resolution identifier and the operative clause.
const Connective = " resuelve: por "

// Fallback reasons reported by FindOperativePage.
const (
	FallbackThirdToLast = "marker not found, using third to last page"
	FallbackFirstPage   = "marker not found, document has at most two pages"
)

var (
	whitespace       = regexp.MustCompile(`\s+`)
	cpSeparator      = regexp.MustCompile(`\s*\.?\s*CP\s*\.\s*`)
	resolutionSpace  = regexp.MustCompile(`(RESOLUCI[ÓO]N)(\d+)`)
	resolutionStrict = regexp.MustCompile(`RESOLUCI[ÓO]N \d{3,4}\.CP\.\d{4,5}`)
	resolutionLoose  = regexp.MustCompile(`(?i)RESOLUCI[ÓO]N ?(\d{3,4})\.*CP\.*(\d{4,5})`)
	resolutionNumber = regexp.MustCompile(`RESOLUCI[ÓO]N (\d{3,4})`)

	operativeMarker = regexp.MustCompile(`(?i)unanimidad,.*?RESUELVE\s*:\s*(Art[íi]culo)`)
	resolvePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)unanimidad,\s*RESUELVE\s*:\s*(Art[íi]culo)`),
		operativeMarker,
		regexp.MustCompile(`(?i)RESUELVE:\s*(Art[íi]culo)`),
		regexp.MustCompile(`(?i)RESUELVE:`),
	}

	secretarySection = regexp.MustCompile(`(?i)(SECRETARIO GENERAL.*?Copia:.*)`)
	copySection      = regexp.MustCompile(`(?i)(Copia:.*)`)
)

// PageOutcome reports where the operative clause starts and whether the
// marker was actually found or a fallback was applied.
type PageOutcome struct {
	Page   int
	Found  bool
	Reason string
}

// Result is the structured content of one resolution document.
type Result struct {
	// ResolutionID is e.g. "RESOLUCIÓN 045.CP.2024", or the file name stem
	// when page one carries no identifier.
	ResolutionID     string
	IDFromDocument   bool
	NumberResolution string
	Considerations   []string
	CopyRecipients   string
	OperativeRaw     string
	OperativeEmbed   string
	OperativePage    PageOutcome
	TotalPages       int
}

// ResolvePage is the 1-based page shown to readers.
func (r *Result) ResolvePage() string {
	return strconv.Itoa(r.OperativePage.Page + 1)
}

// Extract builds the Result from per-page text. Empty pages are tolerated;
// every missing piece has a fallback value so ingestion never stops here.
func Extract(pages []string, fileName string) *Result {
	res := &Result{TotalPages: len(pages)}

	first := ""
	if len(pages) > 0 {
		first = pages[0]
	}
	res.ResolutionID, res.NumberResolution = FindResolutionID(first)
	if res.ResolutionID != "" {
		res.IDFromDocument = true
	} else {
		res.ResolutionID = FileStem(fileName)
	}

	cleaned := make([]string, len(pages))
	for i, p := range pages {
		cleaned[i] = cleanPage(p)
	}
	res.OperativePage = FindOperativePage(cleaned)

	total := signatureDots(strings.Join(cleaned, ""))
	total = repeatedSpaces.ReplaceAllString(total, " ")
	res.Considerations = ExtractConsiderations(total)

	clause, copies := splitCopyRecipients(cleaned[min(res.OperativePage.Page, len(cleaned)):])
	res.CopyRecipients = copies
	res.OperativeRaw = res.ResolutionID + Connective + operativeClause(clause)
	res.OperativeEmbed = NormalizeForEmbedding(res.OperativeRaw)
	return res
}

// FindResolutionID searches the first page for "RESOLUCIÓN nnn.CP.yyyy"
// after removing all whitespace. The number is returned without leading
// zeros. Both values are empty when nothing matches.
func FindResolutionID(firstPage string) (id string, number string) {
	text := whitespace.ReplaceAllString(firstPage, "")
	text = cpSeparator.ReplaceAllString(text, ".CP.")
	text = resolutionSpace.ReplaceAllString(text, "$1 $2")

	if m := resolutionStrict.FindString(text); m != "" {
		id = m
	} else if m := resolutionLoose.FindStringSubmatch(text); m != nil {
		id = "RESOLUCIÓN " + m[1] + ".CP." + m[2]
	}
	if id == "" {
		return "", ""
	}

	if m := resolutionNumber.FindStringSubmatch(id); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			number = strconv.Itoa(n)
		}
	}
	return id, number
}

// FindOperativePage returns the first page containing
// "unanimidad, ... RESUELVE: Artículo". Without a match it falls back to the
// third to last page, or to page 0 for documents of at most two pages.
func FindOperativePage(cleanedPages []string) PageOutcome {
	for i, p := range cleanedPages {
		if operativeMarker.MatchString(p) {
			return PageOutcome{Page: i, Found: true}
		}
	}
	if len(cleanedPages) <= 2 {
		return PageOutcome{Page: 0, Reason: FallbackFirstPage}
	}
	return PageOutcome{Page: len(cleanedPages) - 3, Reason: FallbackThirdToLast}
}

// splitCopyRecipients joins the pages from the operative page on and cuts
// the "Copia:" list that follows the secretary signature.
func splitCopyRecipients(pages []string) (text string, copies string) {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(signatureDots(p))
	}
	text = sb.String()

	section := secretarySection.FindString(text)
	if section == "" {
		return text, ""
	}
	copies = copySection.FindString(section)
	if copies != "" {
		text = strings.TrimSpace(strings.ReplaceAll(text, copies, ""))
	}
	return text, copies
}

// operativeClause drops everything before the RESUELVE marker.
func operativeClause(text string) string {
	for _, p := range resolvePatterns {
		if loc := p.FindStringIndex(text); loc != nil {
			text = text[loc[0]:]
			break
		}
	}
	text = repeatedSpaces.ReplaceAllString(text, " ")
	text = lineBreaks.ReplaceAllString(text, " ")
	return signatureDots(text)
}

// FileStem returns the file name without directory and extension.
func FileStem(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
