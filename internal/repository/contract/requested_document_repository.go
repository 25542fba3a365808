package contract

import (
	"context"
	"time"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/specification"
)

type RequestedDocumentRepository interface {
	// Increment creates the counter at 1 or adds one to it.
	Increment(ctx context.Context, documentId uint, at time.Time) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RequestedDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
