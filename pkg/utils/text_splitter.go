package utils

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, from paragraph breaks down to single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text on the first separator that occurs in it and
// recurses with the finer separators on pieces that are still too long.
// Adjacent small pieces are merged back up to ChunkSize runes, carrying up to
// Overlap runes of trailing context into the next chunk.
type RecursiveSplitter struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &RecursiveSplitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		Separators: DefaultSeparators,
	}
}

// SplitText splits a long string into chunks of at most chunkSize runes with
// overlap runes of shared context at the boundaries.
func SplitText(text string, chunkSize int, overlap int) []string {
	return NewRecursiveSplitter(chunkSize, overlap).Split(text)
}

func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.Separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := ""
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if separator == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		for _, p := range strings.Split(text, separator) {
			if p != "" {
				pieces = append(pieces, p)
			}
		}
	}

	var chunks, pending []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, separator)...)
			pending = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending, separator)...)
	}
	return chunks
}

func (s *RecursiveSplitter) merge(pieces []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)
	joinedLen := func(current []string) int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	var docs, current []string
	total := 0
	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if total+pieceLen+joinedLen(current) > s.ChunkSize {
			if len(current) > 0 {
				if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
					docs = append(docs, doc)
				}
				for total > s.Overlap || (total+pieceLen+joinedLen(current) > s.ChunkSize && total > 0) {
					dropped := utf8.RuneCountInString(current[0])
					if len(current) > 1 {
						dropped += sepLen
					}
					total -= dropped
					current = current[1:]
				}
			}
		}
		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// ChunkPair is a normalized chunk that gets embedded together with the raw
// chunk shown to readers.
type ChunkPair struct {
	Index      int
	Raw        string
	Normalized string
}

// SplitPaired splits both renditions of the same text and pairs them by
// position. Normalized chunks drive the count; a missing raw chunk falls back
// to the normalized one.
func SplitPaired(raw, normalized string, chunkSize, overlap int) []ChunkPair {
	splitter := NewRecursiveSplitter(chunkSize, overlap)
	rawChunks := splitter.Split(raw)
	normChunks := splitter.Split(normalized)

	pairs := make([]ChunkPair, 0, len(normChunks))
	for i, n := range normChunks {
		r := n
		if i < len(rawChunks) {
			r = rawChunks[i]
		}
		pairs = append(pairs, ChunkPair{Index: i, Raw: r, Normalized: n})
	}
	return pairs
}
