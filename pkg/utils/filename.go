package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9_]`)

// CleanFilename lowercases name, turns spaces into underscores, removes
// accents and every other character outside [a-z0-9_], and keeps the
// extension. "Resolución 045 CP.pdf" becomes "resolucion_045_cp.pdf".
func CleanFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	stem = strings.ToLower(stem)
	stem = strings.ReplaceAll(stem, " ", "_")
	stem = strings.ReplaceAll(StripAccents(stem), "ñ", "n")
	stem = unsafeFilenameChars.ReplaceAllString(stem, "")
	if stem == "" {
		stem = "document"
	}

	ext = unsafeFilenameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}
