package unitofwork

import (
	"context"

	"resolution-rag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	EmbeddingRepository() contract.EmbeddingRepository
	RequestedDocumentRepository() contract.RequestedDocumentRepository
	FeedbackRepository() contract.FeedbackRepository
}
