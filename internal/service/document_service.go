package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/storage"
	"resolution-rag-be/pkg/sysusage"
	"resolution-rag-be/pkg/utils"
)

type IDocumentService interface {
	Upload(ctx context.Context, req *dto.UploadDocumentRequest, body io.Reader) (*dto.UploadDocumentResponse, error)
	GetAll(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.DocumentResponse, error)
	Show(ctx context.Context, id uint) (*dto.DocumentResponse, error)
	Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, id uint) error
	Collections(ctx context.Context) (*dto.CollectionsResponse, error)
}

// collectionCache is implemented by search.CachedStore.
type collectionCache interface {
	Invalidate()
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	blobs            storage.BlobStore
	publisherService IPublisherService
	store            search.Store
	cache            collectionCache
	sampler          *sysusage.Sampler
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	blobs storage.BlobStore,
	publisherService IPublisherService,
	store search.Store,
	cache collectionCache,
	sampler *sysusage.Sampler,
	logger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		blobs:            blobs,
		publisherService: publisherService,
		store:            store,
		cache:            cache,
		sampler:          sampler,
		logger:           logger,
	}
}

// Upload stores the PDF under <collection>/<clean name>, registers the
// document and queues it for indexing.
func (s *documentService) Upload(ctx context.Context, req *dto.UploadDocumentRequest, body io.Reader) (*dto.UploadDocumentResponse, error) {
	start := time.Now()
	initial := s.sampler.Take(ctx)

	cleaned := utils.CleanFilename(req.FileName)
	objectPath := req.CollectionName + "/" + cleaned

	existing, err := s.blobs.List(ctx, req.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", req.CollectionName, err)
	}
	for _, obj := range existing {
		if obj.Name == cleaned {
			return nil, ErrDocumentExists
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	dup, err := uow.DocumentRepository().FindOne(ctx, specification.ByPath{Path: objectPath})
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, ErrDocumentExists
	}

	uploadStart := time.Now()
	publicURL, err := s.blobs.Upload(ctx, objectPath, body, req.ContentType)
	if errors.Is(err, storage.ErrObjectExists) {
		return nil, ErrDocumentExists
	}
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", objectPath, err)
	}
	uploadTime := time.Since(uploadStart)

	saveStart := time.Now()
	doc := entity.Document{
		Name:           req.FileName,
		CollectionName: req.CollectionName,
		Path:           publicURL,
		PhysicalPath:   objectPath,
	}
	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		if delErr := s.blobs.Delete(ctx, objectPath); delErr != nil {
			s.logger.Warn("DOCUMENT", "Failed to remove orphaned upload", map[string]interface{}{"path": objectPath, "error": delErr})
		}
		if errors.Is(err, contract.ErrDuplicateKey) {
			return nil, ErrDocumentExists
		}
		return nil, err
	}
	saveTime := time.Since(saveStart)

	if err := s.publisherService.Publish(ctx, dto.IndexDocumentMessage{DocumentId: doc.Id, FileName: cleaned}); err != nil {
		s.logger.Error("DOCUMENT", "Failed to queue document for indexing", map[string]interface{}{"document_id": doc.Id, "error": err})
	}

	cpuUsage, memoryUsage := sysusage.Between(initial, s.sampler.Take(ctx))
	res := &dto.UploadDocumentResponse{
		Status:         "Successfully Uploaded",
		Message:        fmt.Sprintf("Documento '%s' registrado en la colección '%s'.", req.FileName, req.CollectionName),
		DocumentId:     doc.Id,
		FileName:       req.FileName,
		CollectionName: req.CollectionName,
		Path:           publicURL,
		ExecutionTimes: dto.ExecutionTimes{
			UploadTime: uploadTime.Seconds(),
			SaveTime:   saveTime.Seconds(),
			TotalTime:  time.Since(start).Seconds(),
		},
		CpuUsage:    cpuUsage,
		MemoryUsage: memoryUsage,
	}

	s.logger.Info("DOCUMENT", "Document uploaded", map[string]interface{}{
		"document_id": doc.Id,
		"path":        objectPath,
		"total_time":  res.ExecutionTimes.TotalTime,
	})
	return res, nil
}

func (s *documentService) GetAll(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderBy{Field: "id"}}
	if req != nil && req.CollectionName != "" {
		specs = append(specs, specification.ByCollection{Collection: req.CollectionName})
	}
	if req != nil && req.Search != "" {
		specs = append(specs, specification.NameContains{Query: req.Search})
	}
	if req != nil && req.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: req.Limit, Offset: req.Offset})
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocumentResponse(d)
	}
	return out, nil
}

func (s *documentService) Show(ctx context.Context, id uint) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return toDocumentResponse(doc), nil
}

// Update renames a document or moves it to another collection. Chunks
// follow the document so retrieval scopes stay consistent.
func (s *documentService) Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	moved := doc.CollectionName != req.CollectionName
	doc.Name = req.Name
	doc.CollectionName = req.CollectionName
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}
	if moved {
		if err := uow.EmbeddingRepository().UpdateCollection(ctx, doc.Id, doc.CollectionName); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if moved {
		s.cache.Invalidate()
	}
	return toDocumentResponse(doc), nil
}

func (s *documentService) Delete(ctx context.Context, id uint) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := uow.EmbeddingRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Invalidate()
	if doc.PhysicalPath != "" {
		if err := s.blobs.Delete(ctx, doc.PhysicalPath); err != nil {
			s.logger.Warn("DOCUMENT", "Failed to delete stored file", map[string]interface{}{"document_id": id, "error": err})
		}
	}
	s.logger.Info("DOCUMENT", "Document deleted", map[string]interface{}{"document_id": id, "embeddings": len(doc.EmbeddingIds)})
	return nil
}

func (s *documentService) Collections(ctx context.Context) (*dto.CollectionsResponse, error) {
	names, err := s.store.Collections(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return &dto.CollectionsResponse{Collections: names}, nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:             d.Id,
		Name:           d.Name,
		CollectionName: d.CollectionName,
		Path:           d.Path,
		EmbeddingCount: len(d.EmbeddingIds),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
