package mapper

import (
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type EmbeddingMapper struct{}

func NewEmbeddingMapper() *EmbeddingMapper {
	return &EmbeddingMapper{}
}

func (m *EmbeddingMapper) ToEntity(e *model.Embedding) *entity.Embedding {
	if e == nil {
		return nil
	}
	return &entity.Embedding{
		Id:             e.Id,
		Vector:         e.Vector.Slice(),
		Metadata:       e.Metadata.Data(),
		CollectionName: e.CollectionName,
		DocumentId:     e.DocumentId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

// ToModel keeps the metadata uuid, collection and chunk index in step with
// the row columns.
func (m *EmbeddingMapper) ToModel(e *entity.Embedding) *model.Embedding {
	if e == nil {
		return nil
	}
	meta := e.Metadata
	meta.UUID = e.Id.String()
	meta.CollectionName = e.CollectionName
	meta.ChunkIndex = e.ChunkIndex
	return &model.Embedding{
		Id:             e.Id,
		Vector:         pgvector.NewVector(e.Vector),
		Metadata:       datatypes.NewJSONType(meta),
		CollectionName: e.CollectionName,
		DocumentId:     e.DocumentId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *EmbeddingMapper) ToEntities(embeddings []*model.Embedding) []*entity.Embedding {
	entities := make([]*entity.Embedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
