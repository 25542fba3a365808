package mapper

import (
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/model"
	"resolution-rag-be/pkg/store"
)

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(f *model.Feedback) *entity.Feedback {
	if f == nil {
		return nil
	}
	return &entity.Feedback{
		Id:                f.Id,
		ModelName:         f.ModelName,
		Query:             f.Query,
		Context:           f.Context,
		FullResponse:      f.FullResponse,
		Sources:           []store.Source(f.Sources),
		UseConsiderations: f.UseConsiderations,
		NDocuments:        f.NDocuments,
		WordList:          []string(f.WordList),
		FeedbackType:      f.FeedbackType,
		Score:             f.Score,
		Sentiment:         store.Sentiment(f.Sentiment),
		Text:              f.Text,
		CreatedAt:         f.CreatedAt,
	}
}

func (m *FeedbackMapper) ToModel(f *entity.Feedback) *model.Feedback {
	if f == nil {
		return nil
	}
	sources := f.Sources
	if sources == nil {
		sources = []store.Source{}
	}
	words := f.WordList
	if words == nil {
		words = []string{}
	}
	return &model.Feedback{
		Id:                f.Id,
		ModelName:         f.ModelName,
		Query:             f.Query,
		Context:           f.Context,
		FullResponse:      f.FullResponse,
		Sources:           sources,
		UseConsiderations: f.UseConsiderations,
		NDocuments:        f.NDocuments,
		WordList:          words,
		FeedbackType:      f.FeedbackType,
		Score:             f.Score,
		Sentiment:         string(f.Sentiment),
		Text:              f.Text,
		CreatedAt:         f.CreatedAt,
	}
}
