package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_AddIsIdempotentPerChunk(t *testing.T) {
	idx := NewMemoryIndex()
	md := chunk("Doc", "c", "texto", 0, nil)

	added, err := idx.Add(md, []float32{1, 0})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = idx.Add(md, []float32{1, 0})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, idx.Len())

	_, err = idx.Add(chunk("Doc", "c", "texto", 1, nil), []float32{1, 0, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemoryIndex_Queries(t *testing.T) {
	idx := NewMemoryIndex()
	_, _ = idx.Add(chunk("A", "consejo", "Aprobar el Reglamento", 0, strPtr("12")), []float32{1, 0})
	_, _ = idx.Add(chunk("B", "consejo", "otra cosa", 0, nil), []float32{0, 1})
	_, _ = idx.Add(chunk("C", "2024", "acta", 0, nil), []float32{1, 1})
	ctx := context.Background()

	cols, err := idx.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "consejo"}, cols)

	kw, err := idx.KeywordMatch(ctx, "consejo", "reglamento")
	require.NoError(t, err)
	require.Len(t, kw, 1)
	assert.Equal(t, "A", kw[0].DocumentName)

	num, err := idx.NumericMatch(ctx, "consejo", []string{"12"})
	require.NoError(t, err)
	require.Len(t, num, 1)

	byCollection, err := idx.NumericMatch(ctx, "2024", []string{"2024"})
	require.NoError(t, err)
	require.Len(t, byCollection, 1)
	assert.Equal(t, "C", byCollection[0].DocumentName)

	vec, err := idx.VectorSearch(ctx, "consejo", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, vec, 1)
	assert.Equal(t, "A", vec[0].Metadata.DocumentName)
	assert.InDelta(t, 1.0, vec[0].Similarity, 1e-9)

	opposed, err := idx.VectorSearch(ctx, "consejo", []float32{-1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, opposed, 2)
	for _, h := range opposed {
		assert.GreaterOrEqual(t, h.Similarity, 0.0)
		assert.LessOrEqual(t, h.Similarity, 1.0)
	}
}

func TestClampSimilarity(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: -0.4, want: 0},
		{in: 0, want: 0},
		{in: 0.73, want: 0.73},
		{in: 1, want: 1},
		{in: 1.0000001, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampSimilarity(tt.in))
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{2, 0}, []float32{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 0}))
}

type countingStore struct {
	*MemoryIndex
	calls int
}

func (c *countingStore) Collections(ctx context.Context) ([]string, error) {
	c.calls++
	return c.MemoryIndex.Collections(ctx)
}

func TestCachedStore(t *testing.T) {
	inner := &countingStore{MemoryIndex: NewMemoryIndex()}
	cached := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	cols, err := cached.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, cols)

	_, _ = inner.Add(chunk("A", "consejo", "x", 0, nil), []float32{1})
	cols, _ = cached.Collections(ctx)
	assert.Equal(t, []string{"consejo"}, cols)
	cols, _ = cached.Collections(ctx)
	assert.Equal(t, []string{"consejo"}, cols)
	assert.Equal(t, 2, inner.calls)

	_, _ = inner.Add(chunk("B", "otra", "y", 0, nil), []float32{1})
	cached.Invalidate()
	cols, _ = cached.Collections(ctx)
	assert.Equal(t, []string{"consejo", "otra"}, cols)
	assert.Equal(t, 3, inner.calls)
}
