package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/events"
	"resolution-rag-be/pkg/resolution"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolutionPages() []string {
	return []string{
		"ESPOCH ESCUELA SUPERIOR POLITÉCNICA DE CHIMBORAZO DIRECCIÓN DE SECRETARÍA GENERAL\n" +
			"RESOLUCIÓN 045 . CP . 2024\nEL CONSEJO POLITÉCNICO\nConsiderando:\n" +
			"Que, el artículo 350 de la Constitución señala; Que, mediante oficio se solicita:",
		"Que, es necesario reformar el reglamento, y\nEn ejercicio de sus atribuciones, por unanimidad,\n" +
			"RESUELVE: Artículo 1.- Aprobar el reglamento de la institución. " +
			"Artículo 2.- Disponer a la Dirección de Planificación la publicación del reglamento aprobado.",
		"Artículo 3.- Notificar. SECRETARIO GENERAL ………… Copia: Rectorado, Vicerrectorado.",
	}
}

func newIndexingFixture(t *testing.T) (*fakeDB, *entity.Document, *fakeEmbedder, *recordingPublisher, IIndexingService) {
	t.Helper()
	db := newFakeDB()
	doc := db.addDocument(entity.Document{
		Name:           "res_045.pdf",
		CollectionName: "general",
		Path:           "http://files.test/uploads/general/res_045.pdf",
		PhysicalPath:   "general/res_045.pdf",
	})
	embedder := &fakeEmbedder{}
	pub := &recordingPublisher{}
	reader := func(ctx context.Context, d *entity.Document) ([]string, error) {
		return resolutionPages(), nil
	}
	svc := NewIndexingService(db, embedder, reader, pub, IndexingConfig{ChunkSize: 120, ChunkOverlap: 20}, logger.NewNopLogger())
	return db, doc, embedder, pub, svc
}

func TestIndexingService_IndexDocument(t *testing.T) {
	db, doc, _, pub, svc := newIndexingFixture(t)

	report, err := svc.IndexDocument(context.Background(), doc.Id)
	require.NoError(t, err)

	assert.Equal(t, doc.Id, report.DocumentId)
	assert.Equal(t, "RESOLUCIÓN 045.CP.2024", report.ResolutionId)
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, "2", report.OperativePage)
	require.Greater(t, report.Chunks, 1)
	assert.Equal(t, report.Chunks, report.Stored)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)

	stored := db.embeddingsOf(doc.Id)
	require.Len(t, stored, report.Chunks)
	for i, e := range stored {
		assert.Equal(t, i, e.ChunkIndex)
		assert.Equal(t, i, e.Metadata.ChunkIndex)
		assert.Equal(t, "general", e.CollectionName)
		assert.Equal(t, "RESOLUCIÓN 045.CP.2024", e.Metadata.DocumentName)
		assert.Equal(t, doc.Path, e.Metadata.FilePath)
		require.NotNil(t, e.Metadata.NumberResolution)
		assert.Equal(t, "45", *e.Metadata.NumberResolution)
		assert.Len(t, e.Metadata.Considerations, 3)
		assert.NotEmpty(t, e.Metadata.Text)
		assert.Len(t, e.Vector, 3)
	}
	assert.Len(t, db.document(doc.Id).EmbeddingIds, report.Chunks)
	assert.Equal(t, []string{events.DocumentIndexed}, pub.types())
}

func TestIndexingService_RerunSkipsExistingChunks(t *testing.T) {
	db, doc, _, _, svc := newIndexingFixture(t)
	ctx := context.Background()

	first, err := svc.IndexPages(ctx, doc.Id, resolutionPages())
	require.NoError(t, err)

	second, err := svc.IndexPages(ctx, doc.Id, resolutionPages())
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Zero(t, second.Stored)
	assert.Equal(t, first.Chunks, second.Skipped)
	assert.Len(t, db.embeddingsOf(doc.Id), first.Chunks)
	assert.Len(t, db.document(doc.Id).EmbeddingIds, first.Chunks)
}

func TestIndexingService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(db *fakeDB, doc *entity.Document, embedder *fakeEmbedder) (uint, []string)
		wantErr error
	}{
		{
			name: "missing document",
			prepare: func(db *fakeDB, doc *entity.Document, embedder *fakeEmbedder) (uint, []string) {
				return doc.Id + 100, resolutionPages()
			},
			wantErr: ErrDocumentNotFound,
		},
		{
			name: "no readable text",
			prepare: func(db *fakeDB, doc *entity.Document, embedder *fakeEmbedder) (uint, []string) {
				return doc.Id, []string{"", "  \n "}
			},
			wantErr: ErrUnreadableDocument,
		},
		{
			name: "every chunk fails to embed",
			prepare: func(db *fakeDB, doc *entity.Document, embedder *fakeEmbedder) (uint, []string) {
				embedder.failOn = " "
				return doc.Id, resolutionPages()
			},
			wantErr: ErrIndexingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, doc, embedder, pub, svc := newIndexingFixture(t)
			id, pages := tt.prepare(db, doc, embedder)

			_, err := svc.IndexPages(context.Background(), id, pages)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, db.embeddingsOf(doc.Id))
			assert.Empty(t, pub.types())
		})
	}
}

func TestIndexingService_PartialFailureKeepsStoredChunks(t *testing.T) {
	db, doc, embedder, _, svc := newIndexingFixture(t)
	embedder.failOn = "planificacion"

	report, err := svc.IndexPages(context.Background(), doc.Id, resolutionPages())
	require.NoError(t, err)

	assert.Positive(t, report.Failed)
	assert.Positive(t, report.Stored)
	assert.Equal(t, report.Chunks, report.Stored+report.Failed)
	assert.Len(t, db.embeddingsOf(doc.Id), report.Stored)
}

func TestIndexingService_ReaderErrorIsUnreadable(t *testing.T) {
	tests := []struct {
		name   string
		reader PageReader
	}{
		{
			name: "missing blob",
			reader: func(ctx context.Context, d *entity.Document) ([]string, error) {
				return nil, errors.New("file missing")
			},
		},
		{
			name: "not a pdf",
			reader: func(ctx context.Context, d *entity.Document) ([]string, error) {
				data := []byte("this is not a pdf at all")
				return resolution.ReadPages(bytes.NewReader(data), int64(len(data)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newFakeDB()
			doc := db.addDocument(entity.Document{Name: "a.pdf", CollectionName: "general"})
			svc := NewIndexingService(db, &fakeEmbedder{}, tt.reader, nil, IndexingConfig{ChunkSize: 100, ChunkOverlap: 10}, logger.NewNopLogger())

			_, err := svc.IndexDocument(context.Background(), doc.Id)
			assert.ErrorIs(t, err, ErrUnreadableDocument)
			assert.NotErrorIs(t, err, ErrIndexingFailed)
		})
	}
}

func TestIndexingService_ReaderCancelledIsNotTerminal(t *testing.T) {
	db := newFakeDB()
	doc := db.addDocument(entity.Document{Name: "a.pdf", CollectionName: "general"})
	ctx, cancel := context.WithCancel(context.Background())
	reader := func(ctx context.Context, d *entity.Document) ([]string, error) {
		cancel()
		return nil, errors.New("read interrupted")
	}
	svc := NewIndexingService(db, &fakeEmbedder{}, reader, nil, IndexingConfig{ChunkSize: 100, ChunkOverlap: 10}, logger.NewNopLogger())

	_, err := svc.IndexDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnreadableDocument)
}
