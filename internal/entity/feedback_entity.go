package entity

import (
	"time"

	"resolution-rag-be/pkg/store"
)

type Feedback struct {
	Id                uint
	ModelName         string
	Query             string
	Context           string
	FullResponse      string
	Sources           []store.Source
	UseConsiderations bool
	NDocuments        int
	WordList          []string
	FeedbackType      string
	Score             string
	Sentiment         store.Sentiment
	Text              string
	CreatedAt         time.Time
}
