package service

import (
	"context"
	"time"

	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/internal/repository/scope"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/pkg/rag/search"
)

type IRequestedDocumentService interface {
	search.RequestRecorder
	GetAll(ctx context.Context) ([]*dto.RequestedDocumentResponse, error)
	CountRequested(ctx context.Context) (int64, error)
}

type requestedDocumentService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewRequestedDocumentService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IRequestedDocumentService {
	return &requestedDocumentService{
		uowFactory: uowFactory,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordRequests increments the counter of every listed document that can
// be resolved, by file path first and by name second. Unknown documents are
// logged and skipped.
func (s *requestedDocumentService) RecordRequests(ctx context.Context, requests []search.DocumentRequest) error {
	if len(requests) == 0 {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := s.now()
	for _, req := range requests {
		var specs []specification.Specification
		if req.FilePath != "" {
			specs = append(specs, specification.ByPath{Path: req.FilePath})
		} else {
			specs = append(specs, specification.ByDocumentName{Name: req.Name})
		}

		doc, err := uow.DocumentRepository().FindOne(ctx, specs...)
		if err != nil {
			return err
		}
		if doc == nil && req.FilePath != "" {
			doc, err = uow.DocumentRepository().FindOne(ctx, specification.ByDocumentName{Name: req.Name})
			if err != nil {
				return err
			}
		}
		if doc == nil {
			s.logger.Debug("REQUESTED", "Requested document not found", map[string]interface{}{"name": req.Name, "path": req.FilePath})
			continue
		}
		if err := uow.RequestedDocumentRepository().Increment(ctx, doc.Id, now); err != nil {
			return err
		}
	}
	return uow.Commit()
}

func (s *requestedDocumentService) GetAll(ctx context.Context) ([]*dto.RequestedDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.RequestedDocumentRepository().FindAll(ctx, specification.ScopeFunc(scope.MostRequestedFirst))
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RequestedDocumentResponse, len(rows))
	for i, r := range rows {
		out[i] = &dto.RequestedDocumentResponse{
			Id:              r.Id,
			DocumentId:      r.DocumentId,
			DocumentName:    r.DocumentName,
			RequestedCount:  r.RequestedCount,
			LastRequestedAt: r.LastRequestedAt,
		}
	}
	return out, nil
}

func (s *requestedDocumentService) CountRequested(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.RequestedDocumentRepository().Count(ctx, specification.RequestedAtLeastOnce{})
}
