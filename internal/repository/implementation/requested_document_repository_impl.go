package implementation

import (
	"context"
	"time"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/mapper"
	"resolution-rag-be/internal/model"
	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestedDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RequestedDocumentMapper
}

func NewRequestedDocumentRepository(db *gorm.DB) contract.RequestedDocumentRepository {
	return &RequestedDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewRequestedDocumentMapper(),
	}
}

func (r *RequestedDocumentRepositoryImpl) Increment(ctx context.Context, documentId uint, at time.Time) error {
	row := &model.RequestedDocument{
		DocumentId:      documentId,
		RequestedCount:  1,
		LastRequestedAt: at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"requested_count":   gorm.Expr("requested_documents.requested_count + 1"),
				"last_requested_at": at,
			}),
		}).
		Create(row).Error
}

func (r *RequestedDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RequestedDocument, error) {
	var rows []*model.RequestedDocument
	query := applySpecifications(r.db.WithContext(ctx).Preload("Document"), specs...)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *RequestedDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.RequestedDocument{}).Count(&count).Error
	return count, err
}
