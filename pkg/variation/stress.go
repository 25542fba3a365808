package variation

import "strings"

// Stress identifies the syllable that carries the accent of a word.
type Stress int

const (
	// Aguda words are stressed on the last syllable.
	Aguda Stress = iota
	// Grave (llana) words are stressed on the second to last syllable.
	Grave
	// Esdrujula words are stressed on the third to last syllable.
	Esdrujula
)

func (s Stress) String() string {
	switch s {
	case Aguda:
		return "aguda"
	case Grave:
		return "grave"
	case Esdrujula:
		return "esdrujula"
	default:
		return "unknown"
	}
}

var esdrujulaEndings = []string{
	"ico", "ica", "icos", "icas",
	"ulo", "ula", "ulos", "ulas",
	"imo", "ima", "imos", "imas",
	"ogo", "oga", "ogos", "ogas",
	"afo", "afos", "enes",
}

var accentFor = map[rune]rune{
	'a': 'á', 'e': 'é', 'i': 'í', 'o': 'ó', 'u': 'ú', 'ü': 'ú',
}

// MarkedStress returns the stress pattern under which an unaccented word
// needs a written accent. Words ending in a vowel, n or s are unmarked when
// grave, so the marked form is aguda unless the ending is a known esdrujula
// suffix. Words ending in any other consonant are unmarked when aguda, so the
// marked form is grave.
func MarkedStress(word string) Stress {
	w := strings.ToLower(word)
	nuclei := syllableNuclei([]rune(w))
	if len(nuclei) >= 3 {
		for _, suffix := range esdrujulaEndings {
			if strings.HasSuffix(w, suffix) {
				return Esdrujula
			}
		}
	}

	r := []rune(w)
	if len(r) == 0 {
		return Grave
	}
	last := r[len(r)-1]
	if isVowel(last) || last == 'n' || last == 's' {
		return Aguda
	}
	return Grave
}

// Accentuate places a single written accent on the vowel dictated by
// MarkedStress. It returns "" for words with fewer syllables than the
// stress pattern needs, such as monosyllables.
func Accentuate(word string) string {
	w := []rune(strings.ToLower(word))
	nuclei := syllableNuclei(w)

	var idx int
	switch MarkedStress(string(w)) {
	case Aguda:
		idx = len(nuclei) - 1
	case Grave:
		idx = len(nuclei) - 2
	case Esdrujula:
		idx = len(nuclei) - 3
	}
	if len(nuclei) < 2 || idx < 0 {
		return ""
	}

	pos := stressedVowel(w, nuclei[idx])
	w[pos] = accentFor[w[pos]]
	return string(w)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'ü':
		return true
	}
	return false
}

func isStrong(r rune) bool {
	return r == 'a' || r == 'e' || r == 'o'
}

// syllableNuclei groups vowel positions into syllable nuclei. Adjacent strong
// vowels form a hiatus and split; any pairing with a weak vowel is a
// diphthong. The silent u of que/qui/gue/gui is not a vowel.
func syllableNuclei(w []rune) [][]int {
	var nuclei [][]int
	var current []int
	prevVowel := false

	for i, r := range w {
		if !isVowel(r) || silentU(w, i) {
			if len(current) > 0 {
				nuclei = append(nuclei, current)
				current = nil
			}
			prevVowel = false
			continue
		}
		if prevVowel && isStrong(r) && isStrong(w[current[len(current)-1]]) {
			nuclei = append(nuclei, current)
			current = nil
		}
		current = append(current, i)
		prevVowel = true
	}
	if len(current) > 0 {
		nuclei = append(nuclei, current)
	}
	return nuclei
}

func silentU(w []rune, i int) bool {
	if w[i] != 'u' || i == 0 || i+1 >= len(w) {
		return false
	}
	if next := w[i+1]; next != 'e' && next != 'i' {
		return false
	}
	return w[i-1] == 'q' || w[i-1] == 'g'
}

// stressedVowel picks the strong vowel of a nucleus, or its last weak vowel.
func stressedVowel(w []rune, nucleus []int) int {
	for _, pos := range nucleus {
		if isStrong(w[pos]) {
			return pos
		}
	}
	return nucleus[len(nucleus)-1]
}
