package contract

import (
	"context"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/pkg/rag/search"
)

// EmbeddingRepository persists chunk vectors and serves the retriever.
type EmbeddingRepository interface {
	search.Store

	// Create inserts the embedding. It reports false, without error, when
	// the document already holds a chunk with the same index.
	Create(ctx context.Context, embedding *entity.Embedding) (bool, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByDocumentId(ctx context.Context, documentId uint) error
	// UpdateCollection moves every chunk of a document to another collection.
	UpdateCollection(ctx context.Context, documentId uint, collection string) error
}
