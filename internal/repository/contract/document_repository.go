package contract

import (
	"context"
	"errors"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/specification"
)

// ErrDuplicateKey is returned when a write violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uint) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// AppendEmbeddingId adds id to the document's embedding list unless it is
	// already there.
	AppendEmbeddingId(ctx context.Context, documentId uint, embeddingId string) error
}
