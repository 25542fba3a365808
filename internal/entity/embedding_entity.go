package entity

import (
	"time"

	"resolution-rag-be/pkg/store"

	"github.com/google/uuid"
)

type Embedding struct {
	Id             uuid.UUID
	Vector         []float32
	Metadata       store.EmbeddingMetadata
	CollectionName string
	DocumentId     uint
	ChunkIndex     int
	CreatedAt      time.Time
}
