package service

import (
	"context"
	"errors"
	"time"

	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/pkg/events"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/rag/session"
	"resolution-rag-be/pkg/store"
)

type IQueryService interface {
	GetSources(ctx context.Context, req *dto.QueryRequest) (*dto.SourcesResponse, error)
	AddResponse(ctx context.Context, req *dto.AddResponseRequest) error
	RecordFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
}

// Searcher is implemented by search.Retriever.
type Searcher interface {
	Search(ctx context.Context, query string, wordList []string, n int) (*search.Result, error)
}

type queryService struct {
	uowFactory     unitofwork.RepositoryFactory
	searcher       Searcher
	sessions       *session.Manager
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewQueryService(
	uowFactory unitofwork.RepositoryFactory,
	searcher Searcher,
	sessions *session.Manager,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IQueryService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &queryService{
		uowFactory:     uowFactory,
		searcher:       searcher,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// GetSources retrieves the context for a query and records it as the
// newest interaction of the session. Retrieval failures are returned in the
// response body, never as an error, and leave the session untouched.
func (s *queryService) GetSources(ctx context.Context, req *dto.QueryRequest) (*dto.SourcesResponse, error) {
	start := time.Now()
	res, err := s.searcher.Search(ctx, req.Query, req.WordList, req.NDocuments)
	elapsed := time.Since(start)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, search.ErrNoCollections) {
			msg = constant.MsgNoCollections
		}
		s.logger.Error("QUERY", "Search failed", map[string]interface{}{
			"session": req.UserSessionUuid,
			"query":   req.Query,
			"error":   err,
		})
		return &dto.SourcesResponse{Error: msg}, nil
	}

	interaction := s.sessions.Open(req.UserSessionUuid, store.Interaction{
		Query:          req.Query,
		Context:        res.Context,
		Sources:        res.Sources,
		Considerations: res.Considerations,
		SearchDuration: elapsed,
	})

	s.logger.Info("QUERY", "Sources retrieved", map[string]interface{}{
		"session":     req.UserSessionUuid,
		"interaction": interaction.ID,
		"sources":     len(res.Sources),
		"search_time": elapsed.Seconds(),
	})

	sources := res.Sources
	if sources == nil {
		sources = []store.Source{}
	}
	return &dto.SourcesResponse{InteractionUuid: interaction.ID, Sources: sources}, nil
}

func (s *queryService) AddResponse(ctx context.Context, req *dto.AddResponseRequest) error {
	if _, err := s.sessions.Interaction(req.UserSessionUuid, req.InteractionUuid); err != nil {
		return err
	}
	if !s.sessions.UpdateLastResponse(req.UserSessionUuid, req.InteractionUuid, req.FullResponse) {
		return session.ErrInteractionNotFound
	}
	return nil
}

// RecordFeedback persists the feedback with the interaction it refers to,
// then applies it to the session. Negative feedback retracts the
// interaction.
func (s *queryService) RecordFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	interaction, err := s.sessions.Interaction(req.UserSessionUuid, req.InteractionUuid)
	if err != nil {
		return nil, err
	}

	feedback := entity.Feedback{
		ModelName:         req.ModelName,
		Query:             interaction.Query,
		Context:           interaction.Context,
		FullResponse:      interaction.FullResponse,
		Sources:           interaction.Sources,
		UseConsiderations: req.UseConsiderations,
		NDocuments:        req.NDocuments,
		WordList:          req.WordList,
		FeedbackType:      req.FeedbackType,
		Score:             req.Score,
		Sentiment:         store.ParseSentiment(req.Score),
		Text:              req.Text,
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.FeedbackRepository().Create(ctx, &feedback); err != nil {
		return nil, err
	}

	retracted, err := s.sessions.RecordFeedback(req.UserSessionUuid, req.InteractionUuid, req.Score)
	if err != nil {
		// Evicted between lookup and update; the feedback row is kept.
		s.logger.Warn("QUERY", "Feedback stored but session changed", map[string]interface{}{
			"session":     req.UserSessionUuid,
			"interaction": req.InteractionUuid,
			"error":       err,
		})
	}

	event := events.NewFeedbackRecorded(req.UserSessionUuid, req.InteractionUuid, string(feedback.Sentiment), retracted)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("QUERY", "Failed to publish feedback event", map[string]interface{}{"error": err})
	}

	return &dto.FeedbackResponse{
		FeedbackId: feedback.Id,
		Sentiment:  feedback.Sentiment,
		Retracted:  retracted,
	}, nil
}
