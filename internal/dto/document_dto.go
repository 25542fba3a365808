package dto

import (
	"time"

	"resolution-rag-be/pkg/sysusage"
)

// IndexDocumentMessage is published after an upload and consumed by the
// indexer.
type IndexDocumentMessage struct {
	DocumentId uint   `json:"document_id"`
	FileName   string `json:"file_name"`
}

type UploadDocumentRequest struct {
	CollectionName string `form:"collection_name" validate:"required,max=120"`
	FileName       string `validate:"required"`
	ContentType    string
	Size           int64
}

type ExecutionTimes struct {
	UploadTime float64 `json:"upload_time"`
	SaveTime   float64 `json:"save_time"`
	TotalTime  float64 `json:"total_time"`
}

type UploadDocumentResponse struct {
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	DocumentId     uint           `json:"document_id"`
	FileName       string         `json:"filename"`
	CollectionName string         `json:"collection_name"`
	Path           string         `json:"path"`
	ExecutionTimes ExecutionTimes `json:"execution_times"`
	CpuUsage       sysusage.Pair  `json:"cpu_usage"`
	MemoryUsage    sysusage.Pair  `json:"memory_usage"`
}

type DocumentResponse struct {
	Id             uint      `json:"id"`
	Name           string    `json:"name"`
	CollectionName string    `json:"collection_name"`
	Path           string    `json:"path"`
	EmbeddingCount int       `json:"embedding_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListDocumentsRequest struct {
	CollectionName string `query:"collection_name"`
	Search         string `query:"search"`
	Limit          int    `query:"limit" validate:"min=0,max=500"`
	Offset         int    `query:"offset" validate:"min=0"`
}

type UpdateDocumentRequest struct {
	Id             uint
	Name           string `json:"name" form:"name" validate:"required,max=255"`
	CollectionName string `json:"collection_name" form:"collection_name" validate:"required,max=120"`
}

type CollectionsResponse struct {
	Collections []string `json:"collections"`
}

// IndexReport summarises one indexing run.
type IndexReport struct {
	DocumentId    uint    `json:"document_id"`
	ResolutionId  string  `json:"resolution_id"`
	Pages         int     `json:"pages"`
	OperativePage string  `json:"operative_page"`
	PageFallback  string  `json:"page_fallback,omitempty"`
	Chunks        int     `json:"chunks"`
	Stored        int     `json:"stored"`
	Skipped       int     `json:"skipped"`
	Failed        int     `json:"failed"`
	Duration      float64 `json:"duration"`
}

type RequestedDocumentResponse struct {
	Id              uint      `json:"id"`
	DocumentId      uint      `json:"document_id"`
	DocumentName    string    `json:"document_name"`
	RequestedCount  int       `json:"requested_count"`
	LastRequestedAt time.Time `json:"last_requested_at"`
}
