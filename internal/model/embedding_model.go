package model

import (
	"time"

	"resolution-rag-be/pkg/store"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Embedding struct {
	Id             uuid.UUID                                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Vector         pgvector.Vector                             `gorm:"column:embedding;type:vector(768)"`
	Metadata       datatypes.JSONType[store.EmbeddingMetadata] `gorm:"column:embed_metadata;type:jsonb;not null"`
	CollectionName string                                      `gorm:"type:text;not null;index"`
	DocumentId     uint                                        `gorm:"not null;uniqueIndex:idx_embeddings_document_chunk"`
	ChunkIndex     int                                         `gorm:"not null;uniqueIndex:idx_embeddings_document_chunk"`
	CreatedAt      time.Time                                   `gorm:"autoCreateTime"`
}

func (Embedding) TableName() string {
	return "embeddings"
}
