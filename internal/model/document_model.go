package model

import (
	"time"

	"github.com/lib/pq"
)

type Document struct {
	Id             uint           `gorm:"primaryKey;autoIncrement"`
	Name           string         `gorm:"type:text;not null;index"`
	CollectionName string         `gorm:"type:text;not null;index"`
	Path           string         `gorm:"type:text;not null"`
	PhysicalPath   string         `gorm:"type:text;uniqueIndex"`
	EmbeddingIds   pq.StringArray `gorm:"type:text[];default:'{}'"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`

	Embeddings []Embedding         `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
	Requests   []RequestedDocument `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
}

func (Document) TableName() string {
	return "documents"
}
