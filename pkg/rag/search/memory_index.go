package search

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"resolution-rag-be/pkg/store"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

type memoryEntry struct {
	metadata store.EmbeddingMetadata
	vector   []float32
}

// MemoryIndex is a brute-force cosine store kept in process memory.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []memoryEntry
	keys    map[string]struct{}
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{keys: make(map[string]struct{})}
}

// Add stores a chunk. A second chunk with the same document and chunk
// index is ignored; Add reports whether the chunk was new.
func (m *MemoryIndex) Add(metadata store.EmbeddingMetadata, vector []float32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) > 0 && len(m.entries[0].vector) != len(vector) {
		return false, ErrDimensionMismatch
	}
	key := metadata.CollectionName + "\x00" + metadata.FilePath + "\x00" + metadata.DocumentName + "\x00" + strconv.Itoa(metadata.ChunkIndex)
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	m.entries = append(m.entries, memoryEntry{
		metadata: metadata,
		vector:   append([]float32(nil), vector...),
	})
	return true, nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryIndex) Collections(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	for _, e := range m.entries {
		c := e.metadata.CollectionName
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	slices.Sort(out)
	return out, nil
}

func (m *MemoryIndex) NumericMatch(ctx context.Context, collection string, forms []string) ([]store.EmbeddingMetadata, error) {
	return m.filter(collection, func(md store.EmbeddingMetadata) bool {
		return slices.Contains(forms, md.CollectionName) ||
			(md.NumberResolution != nil && slices.Contains(forms, *md.NumberResolution))
	}), nil
}

func (m *MemoryIndex) KeywordMatch(ctx context.Context, collection string, term string) ([]store.EmbeddingMetadata, error) {
	needle := strings.ToLower(term)
	return m.filter(collection, func(md store.EmbeddingMetadata) bool {
		return strings.Contains(strings.ToLower(md.Text), needle)
	}), nil
}

func (m *MemoryIndex) VectorSearch(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	for _, e := range m.entries {
		if e.metadata.CollectionName != collection {
			continue
		}
		if len(e.vector) != len(vector) {
			return nil, ErrDimensionMismatch
		}
		hits = append(hits, Hit{Metadata: e.metadata, Similarity: ClampSimilarity(Cosine(vector, e.vector))})
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *MemoryIndex) filter(collection string, keep func(store.EmbeddingMetadata) bool) []store.EmbeddingMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.EmbeddingMetadata
	for _, e := range m.entries {
		if e.metadata.CollectionName == collection && keep(e.metadata) {
			out = append(out, e.metadata)
		}
	}
	return out
}

// Cosine returns the cosine similarity of a and b, 0 when either is zero.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
