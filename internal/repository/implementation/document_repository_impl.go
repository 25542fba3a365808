package implementation

import (
	"context"
	"errors"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/mapper"
	"resolution-rag-be/internal/model"
	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

// Update writes the editable columns only; embedding_ids is owned by the
// indexer.
func (r *DocumentRepositoryImpl) Update(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	err := r.db.WithContext(ctx).Model(m).
		Select("name", "collection_name", "path", "physical_path", "updated_at").
		Updates(m).Error
	if err != nil {
		return err
	}
	doc.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Document{}).Count(&count).Error
	return count, err
}

func (r *DocumentRepositoryImpl) AppendEmbeddingId(ctx context.Context, documentId uint, embeddingId string) error {
	return r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", documentId).
		Where("NOT (? = ANY(COALESCE(embedding_ids, '{}')))", embeddingId).
		UpdateColumn("embedding_ids", gorm.Expr("array_append(COALESCE(embedding_ids, '{}'), ?)", embeddingId)).
		Error
}
