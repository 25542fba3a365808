package model

import (
	"time"

	"resolution-rag-be/pkg/store"

	"gorm.io/datatypes"
)

type Feedback struct {
	Id                uint                              `gorm:"primaryKey;autoIncrement"`
	ModelName         string                            `gorm:"type:text;not null"`
	Query             string                            `gorm:"type:text;not null"`
	Context           string                            `gorm:"type:text;not null"`
	FullResponse      string                            `gorm:"type:text;not null"`
	Sources           datatypes.JSONSlice[store.Source] `gorm:"type:jsonb;not null"`
	UseConsiderations bool                              `gorm:"not null"`
	NDocuments        int                               `gorm:"column:n_documents;not null"`
	WordList          datatypes.JSONSlice[string]       `gorm:"type:jsonb;not null"`
	FeedbackType      string                            `gorm:"type:text;not null"`
	Score             string                            `gorm:"type:text;not null"`
	Sentiment         string                            `gorm:"type:text;not null;index"`
	Text              string                            `gorm:"type:text"`
	CreatedAt         time.Time                         `gorm:"autoCreateTime"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// AllModels lists every table managed by the migrator.
func AllModels() []interface{} {
	return []interface{}{
		&Document{},
		&Embedding{},
		&RequestedDocument{},
		&Feedback{},
	}
}
