package implementation

import (
	"context"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/mapper"
	"resolution-rag-be/internal/model"
	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/store"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmbeddingMapper
}

func NewEmbeddingRepository(db *gorm.DB) contract.EmbeddingRepository {
	return &EmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmbeddingMapper(),
	}
}

func (r *EmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.Embedding) (bool, error) {
	m := r.mapper.ToModel(embedding)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*embedding = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *EmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	var models []*model.Embedding
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Embedding{}).Count(&count).Error
	return count, err
}

func (r *EmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uint) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.Embedding{}).Error
}

func (r *EmbeddingRepositoryImpl) UpdateCollection(ctx context.Context, documentId uint, collection string) error {
	return r.db.WithContext(ctx).
		Model(&model.Embedding{}).
		Where("document_id = ?", documentId).
		Updates(map[string]interface{}{
			"collection_name": collection,
			"embed_metadata":  gorm.Expr("jsonb_set(embed_metadata, '{collection_name}', to_jsonb(?::text))", collection),
		}).Error
}

func (r *EmbeddingRepositoryImpl) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Embedding{}).
		Distinct().
		Order("collection_name").
		Pluck("collection_name", &names).Error
	return names, err
}

func (r *EmbeddingRepositoryImpl) NumericMatch(ctx context.Context, collection string, forms []string) ([]store.EmbeddingMetadata, error) {
	if len(forms) == 0 {
		return nil, nil
	}
	var models []*model.Embedding
	err := r.db.WithContext(ctx).
		Where("collection_name = ?", collection).
		Where("embed_metadata->>'collection_name' IN ? OR embed_metadata->>'number_resolution' IN ?", forms, forms).
		Order("document_id, chunk_index").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return metadataOf(models), nil
}

func (r *EmbeddingRepositoryImpl) KeywordMatch(ctx context.Context, collection string, term string) ([]store.EmbeddingMetadata, error) {
	var models []*model.Embedding
	err := r.db.WithContext(ctx).
		Where("collection_name = ?", collection).
		Where("embed_metadata->>'text' ILIKE ?", specification.ContainsPattern(term)).
		Order("document_id, chunk_index").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return metadataOf(models), nil
}

// VectorSearch converts pgvector's cosine distance into a similarity,
// 1 - (embedding <=> query), clamped to [0, 1].
func (r *EmbeddingRepositoryImpl) VectorSearch(ctx context.Context, collection string, vector []float32, limit int) ([]search.Hit, error) {
	if limit <= 0 {
		limit = search.DefaultConfig().VectorLimit
	}

	type result struct {
		model.Embedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)
	err := r.db.WithContext(ctx).
		Table("embeddings").
		Select("embeddings.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("collection_name = ?", collection).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	hits := make([]search.Hit, len(results))
	for i, res := range results {
		hits[i] = search.Hit{
			Metadata:   withRowIdentity(&res.Embedding),
			Similarity: search.ClampSimilarity(res.Similarity),
			Strategy:   search.StrategyVector,
		}
	}
	return hits, nil
}

func metadataOf(models []*model.Embedding) []store.EmbeddingMetadata {
	out := make([]store.EmbeddingMetadata, len(models))
	for i, m := range models {
		out[i] = withRowIdentity(m)
	}
	return out
}

// withRowIdentity fills identity fields missing from rows written before
// they were stored in the metadata.
func withRowIdentity(m *model.Embedding) store.EmbeddingMetadata {
	meta := m.Metadata.Data()
	if meta.UUID == "" {
		meta.UUID = m.Id.String()
	}
	if meta.CollectionName == "" {
		meta.CollectionName = m.CollectionName
	}
	return meta
}
