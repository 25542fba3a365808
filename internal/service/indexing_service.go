package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/pkg/embedding"
	"resolution-rag-be/pkg/events"
	"resolution-rag-be/pkg/resolution"
	"resolution-rag-be/pkg/store"
	"resolution-rag-be/pkg/utils"

	"github.com/google/uuid"
)

// PageReader returns the per-page text of a stored document.
type PageReader func(ctx context.Context, doc *entity.Document) ([]string, error)

type IndexingConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type IIndexingService interface {
	// IndexDocument reads, extracts, chunks and embeds a stored document.
	IndexDocument(ctx context.Context, documentId uint) (*dto.IndexReport, error)
	// IndexPages indexes already extracted page text for a document.
	IndexPages(ctx context.Context, documentId uint, pages []string) (*dto.IndexReport, error)
}

type indexingService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	readPages         PageReader
	eventPublisher    events.Publisher
	cfg               IndexingConfig
	logger            logger.ILogger
}

func NewIndexingService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	readPages PageReader,
	eventPublisher events.Publisher,
	cfg IndexingConfig,
	logger logger.ILogger,
) IIndexingService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &indexingService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		readPages:         readPages,
		eventPublisher:    eventPublisher,
		cfg:               cfg,
		logger:            logger,
	}
}

func (s *indexingService) IndexDocument(ctx context.Context, documentId uint) (*dto.IndexReport, error) {
	doc, err := s.findDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	pages, err := s.readPages(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Retrying cannot repair a broken container or a missing blob.
		return nil, fmt.Errorf("read document %d: %w: %v", documentId, ErrUnreadableDocument, err)
	}
	return s.index(ctx, doc, pages)
}

func (s *indexingService) IndexPages(ctx context.Context, documentId uint, pages []string) (*dto.IndexReport, error) {
	doc, err := s.findDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	return s.index(ctx, doc, pages)
}

func (s *indexingService) findDocument(ctx context.Context, documentId uint) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// index embeds every chunk of the operative clause. A chunk that fails to
// embed or persist is skipped; the run fails only when no chunk was stored.
func (s *indexingService) index(ctx context.Context, doc *entity.Document, pages []string) (*dto.IndexReport, error) {
	start := time.Now()
	if !hasText(pages) {
		return nil, ErrUnreadableDocument
	}

	res := resolution.Extract(pages, doc.Name)
	report := &dto.IndexReport{
		DocumentId:    doc.Id,
		ResolutionId:  res.ResolutionID,
		Pages:         res.TotalPages,
		OperativePage: res.ResolvePage(),
		PageFallback:  res.OperativePage.Reason,
	}
	if !res.OperativePage.Found {
		s.logger.Warn("INDEXER", "Operative clause marker not found", map[string]interface{}{
			"document_id": doc.Id,
			"reason":      res.OperativePage.Reason,
			"page":        report.OperativePage,
		})
	}

	base := BaseMetadata(doc, res)
	chunks := utils.SplitPaired(res.OperativeRaw, res.OperativeEmbed, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	report.Chunks = len(chunks)

	for _, chunk := range chunks {
		created, err := s.indexChunk(ctx, doc, base, chunk)
		switch {
		case err != nil:
			report.Failed++
			s.logger.Error("INDEXER", "Chunk skipped", map[string]interface{}{
				"document_id": doc.Id,
				"chunk_index": chunk.Index,
				"error":       err,
			})
		case created:
			report.Stored++
		default:
			report.Skipped++
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	report.Duration = time.Since(start).Seconds()

	if report.Chunks > 0 && report.Stored == 0 && report.Skipped == 0 {
		return report, ErrIndexingFailed
	}

	if err := s.eventPublisher.Publish(ctx, events.NewDocumentIndexed(doc.Id, doc.CollectionName, report.Stored, report.Failed)); err != nil {
		s.logger.Warn("INDEXER", "Failed to publish indexing event", map[string]interface{}{"document_id": doc.Id, "error": err})
	}

	s.logger.Info("INDEXER", "Document indexed", map[string]interface{}{
		"document_id": doc.Id,
		"resolution":  res.ResolutionID,
		"chunks":      report.Chunks,
		"stored":      report.Stored,
		"skipped":     report.Skipped,
		"failed":      report.Failed,
		"duration":    report.Duration,
	})
	return report, nil
}

// indexChunk embeds the normalized chunk and stores it with the raw text in
// its own transaction. It reports false when the chunk already existed.
func (s *indexingService) indexChunk(ctx context.Context, doc *entity.Document, base store.EmbeddingMetadata, chunk utils.ChunkPair) (bool, error) {
	emb, err := s.embeddingProvider.Generate(ctx, chunk.Normalized, embedding.TaskRetrievalDocument)
	if err != nil {
		return false, err
	}

	meta := base
	meta.ChunkIndex = chunk.Index
	meta.Text = chunk.Raw

	record := &entity.Embedding{
		Id:             uuid.New(),
		Vector:         emb.Vector(),
		Metadata:       meta,
		CollectionName: doc.CollectionName,
		DocumentId:     doc.Id,
		ChunkIndex:     chunk.Index,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	created, err := uow.EmbeddingRepository().Create(ctx, record)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}
	if err := uow.DocumentRepository().AppendEmbeddingId(ctx, doc.Id, record.Id.String()); err != nil {
		return false, err
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// BaseMetadata holds the document-level fields shared by every chunk.
func BaseMetadata(doc *entity.Document, res *resolution.Result) store.EmbeddingMetadata {
	considerations := make([]store.ConsiderationEntry, len(res.Considerations))
	for i, c := range res.Considerations {
		considerations[i] = store.ConsiderationEntry{Consideration: c}
	}
	meta := store.EmbeddingMetadata{
		DocumentName:   res.ResolutionID,
		FilePath:       doc.Path,
		ResolvePage:    res.ResolvePage(),
		CollectionName: doc.CollectionName,
		Considerations: considerations,
		Copia:          res.CopyRecipients,
	}
	if res.NumberResolution != "" {
		n := res.NumberResolution
		meta.NumberResolution = &n
	}
	return meta
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
