package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/serverutils"
	"resolution-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryService struct {
	lastQuery *dto.QueryRequest
}

func (f *fakeQueryService) GetSources(ctx context.Context, req *dto.QueryRequest) (*dto.SourcesResponse, error) {
	f.lastQuery = req
	return &dto.SourcesResponse{InteractionUuid: "i-1"}, nil
}

func (f *fakeQueryService) AddResponse(ctx context.Context, req *dto.AddResponseRequest) error {
	return nil
}

func (f *fakeQueryService) RecordFeedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	return &dto.FeedbackResponse{FeedbackId: 1}, nil
}

type fakeDocumentService struct {
	uploaded []byte
	showErr  error
}

func (f *fakeDocumentService) Upload(ctx context.Context, req *dto.UploadDocumentRequest, body io.Reader) (*dto.UploadDocumentResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploaded = data
	return &dto.UploadDocumentResponse{FileName: req.FileName, CollectionName: req.CollectionName}, nil
}

func (f *fakeDocumentService) GetAll(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.DocumentResponse, error) {
	return []*dto.DocumentResponse{{Id: 1, CollectionName: req.CollectionName}}, nil
}

func (f *fakeDocumentService) Show(ctx context.Context, id uint) (*dto.DocumentResponse, error) {
	if f.showErr != nil {
		return nil, f.showErr
	}
	return &dto.DocumentResponse{Id: id}, nil
}

func (f *fakeDocumentService) Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	return &dto.DocumentResponse{Id: req.Id, Name: req.Name}, nil
}

func (f *fakeDocumentService) Delete(ctx context.Context, id uint) error { return nil }

func (f *fakeDocumentService) Collections(ctx context.Context) (*dto.CollectionsResponse, error) {
	return &dto.CollectionsResponse{}, nil
}

func newApp(register func(api fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	app.Use(serverutils.ErrorHandlerMiddleware(serverutils.ErrorMapping{
		Err: service.ErrDocumentNotFound, Status: fiber.StatusNotFound, Message: constant.MsgDocumentNotFound,
	}))
	register(app.Group("/api"))
	return app
}

func TestQueryController_Sources(t *testing.T) {
	svc := &fakeQueryService{}
	app := newApp(func(api fiber.Router) { NewQueryController(svc).RegisterRoutes(api) })

	tests := []struct {
		name      string
		body      string
		status    int
		expectedN int
	}{
		{"defaults n_documents", `{"user_session_uuid":"s","query":"reglamento"}`, fiber.StatusOK, constant.DefaultNDocuments},
		{"explicit n_documents", `{"user_session_uuid":"s","query":"reglamento","n_documents":3}`, fiber.StatusOK, 3},
		{"missing query", `{"user_session_uuid":"s"}`, fiber.StatusBadRequest, 0},
		{"too many documents", `{"user_session_uuid":"s","query":"q","n_documents":500}`, fiber.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.lastQuery = nil
			req := httptest.NewRequest("POST", "/api/query/sources", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.expectedN > 0 {
				require.NotNil(t, svc.lastQuery)
				assert.Equal(t, tt.expectedN, svc.lastQuery.NDocuments)
			}
		})
	}
}

func TestDocumentController_Routes(t *testing.T) {
	svc := &fakeDocumentService{}
	denyAll := func(ctx *fiber.Ctx) error { return fiber.NewError(fiber.StatusUnauthorized, "Missing token") }
	app := newApp(func(api fiber.Router) { NewDocumentController(svc).RegisterRoutes(api, denyAll) })

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"list is public", "GET", "/api/documents?collection_name=cp", fiber.StatusOK},
		{"collections is public", "GET", "/api/documents/collections", fiber.StatusOK},
		{"show", "GET", "/api/documents/7", fiber.StatusOK},
		{"invalid id", "GET", "/api/documents/abc", fiber.StatusBadRequest},
		{"delete is guarded", "DELETE", "/api/documents/7", fiber.StatusUnauthorized},
		{"upload is guarded", "POST", "/api/documents", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestDocumentController_ShowNotFound(t *testing.T) {
	svc := &fakeDocumentService{showErr: service.ErrDocumentNotFound}
	allow := func(ctx *fiber.Ctx) error { return ctx.Next() }
	app := newApp(func(api fiber.Router) { NewDocumentController(svc).RegisterRoutes(api, allow) })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/documents/9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body serverutils.ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, constant.MsgDocumentNotFound, body.Message)
}

func TestDocumentController_Upload(t *testing.T) {
	svc := &fakeDocumentService{}
	allow := func(ctx *fiber.Ctx) error { return ctx.Next() }
	app := newApp(func(api fiber.Router) { NewDocumentController(svc).RegisterRoutes(api, allow) })

	build := func(withFile bool, collection string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if collection != "" {
			require.NoError(t, w.WriteField("collection_name", collection))
		}
		if withFile {
			fw, err := w.CreateFormFile("file", "Resolución 045.pdf")
			require.NoError(t, err)
			_, err = fw.Write([]byte("%PDF-1.4"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	t.Run("stores the file", func(t *testing.T) {
		body, contentType := build(true, "consejo")
		req := httptest.NewRequest("POST", "/api/documents", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, []byte("%PDF-1.4"), svc.uploaded)
	})

	t.Run("missing file", func(t *testing.T) {
		body, contentType := build(false, "consejo")
		req := httptest.NewRequest("POST", "/api/documents", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing collection", func(t *testing.T) {
		body, contentType := build(true, "")
		req := httptest.NewRequest("POST", "/api/documents", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthController(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Pinger
		status int
	}{
		{"all up", map[string]Pinger{"database": PingFunc(func(context.Context) error { return nil })}, fiber.StatusOK},
		{"one down", map[string]Pinger{
			"database": PingFunc(func(context.Context) error { return nil }),
			"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
		}, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(func(api fiber.Router) {
				NewHealthController(tt.checks, func() int { return 2 }).RegisterRoutes(api)
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
