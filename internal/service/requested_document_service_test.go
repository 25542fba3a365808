package service

import (
	"context"
	"testing"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/rag/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestedDocumentService_RecordRequests(t *testing.T) {
	db := newFakeDB()
	a := db.addDocument(entity.Document{Name: "res_045.pdf", Path: "http://files.test/uploads/general/res_045.pdf", PhysicalPath: "general/res_045.pdf"})
	b := db.addDocument(entity.Document{Name: "res_046.pdf", Path: "http://files.test/uploads/general/res_046.pdf", PhysicalPath: "general/res_046.pdf"})
	svc := NewRequestedDocumentService(db, logger.NewNopLogger())
	ctx := context.Background()

	err := svc.RecordRequests(ctx, []search.DocumentRequest{
		{Name: "RESOLUCIÓN 045.CP.2024", FilePath: a.Path},
		{Name: "res_046.pdf", FilePath: "http://elsewhere/res_046.pdf"},
		{Name: "desconocido.pdf"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.RecordRequests(ctx, []search.DocumentRequest{{Name: "x", FilePath: "general/res_045.pdf"}}))

	rows, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, a.Id, rows[0].DocumentId)
	assert.Equal(t, 2, rows[0].RequestedCount)
	assert.Equal(t, b.Id, rows[1].DocumentId)
	assert.Equal(t, 1, rows[1].RequestedCount)
	assert.False(t, rows[0].LastRequestedAt.IsZero())

	count, err := svc.CountRequested(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestRequestedDocumentService_EmptyRequestsSkipTransaction(t *testing.T) {
	db := newFakeDB()
	svc := NewRequestedDocumentService(db, logger.NewNopLogger())

	require.NoError(t, svc.RecordRequests(context.Background(), nil))
	assert.Zero(t, db.commits)
}
