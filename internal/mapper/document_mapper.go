package mapper

import (
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/model"

	"github.com/lib/pq"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:             d.Id,
		Name:           d.Name,
		CollectionName: d.CollectionName,
		Path:           d.Path,
		PhysicalPath:   d.PhysicalPath,
		EmbeddingIds:   append([]string(nil), d.EmbeddingIds...),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	ids := pq.StringArray(d.EmbeddingIds)
	if ids == nil {
		ids = pq.StringArray{}
	}
	return &model.Document{
		Id:             d.Id,
		Name:           d.Name,
		CollectionName: d.CollectionName,
		Path:           d.Path,
		PhysicalPath:   d.PhysicalPath,
		EmbeddingIds:   ids,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
