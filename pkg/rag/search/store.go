package search

import (
	"context"

	"resolution-rag-be/pkg/store"
)

// Strategy names the retrieval strategy that produced a hit.
type Strategy string

const (
	StrategyNumeric Strategy = "numeric"
	StrategyKeyword Strategy = "keyword"
	StrategyVector  Strategy = "vector"
)

// Hit is a scored chunk produced by one strategy. Similarity is in [0, 1].
type Hit struct {
	Metadata   store.EmbeddingMetadata
	Similarity float64
	Strategy   Strategy
}

// Store is the vector/metadata backend the retriever reads from. The
// pgvector repository and MemoryIndex both satisfy it.
type Store interface {
	// Collections lists every collection holding at least one chunk.
	Collections(ctx context.Context) ([]string, error)
	// NumericMatch returns chunks of the collection whose collection name or
	// number_resolution equals one of the given forms of a numeric token.
	NumericMatch(ctx context.Context, collection string, forms []string) ([]store.EmbeddingMetadata, error)
	// KeywordMatch returns chunks of the collection whose raw text contains
	// term, case-insensitively.
	KeywordMatch(ctx context.Context, collection string, term string) ([]store.EmbeddingMetadata, error)
	// VectorSearch returns up to limit chunks of the collection ordered by
	// cosine similarity to vector.
	VectorSearch(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error)
}

// DocumentRequest identifies a document handed to a user. FilePath is the
// public locator and resolves the document when the name does not.
type DocumentRequest struct {
	Name     string
	FilePath string
}

// RequestRecorder counts how often documents are returned to users.
type RequestRecorder interface {
	RecordRequests(ctx context.Context, requests []DocumentRequest) error
}
