package dto

import (
	"resolution-rag-be/pkg/llm"
	"resolution-rag-be/pkg/store"
	"resolution-rag-be/pkg/sysusage"
)

type QueryRequest struct {
	UserSessionUuid   string   `json:"user_session_uuid" validate:"required"`
	Query             string   `json:"query" validate:"required"`
	UseConsiderations bool     `json:"use_considerations"`
	NDocuments        int      `json:"n_documents" validate:"min=1,max=50"`
	WordList          []string `json:"word_list" validate:"max=20"`
}

// SourcesResponse carries either the interaction or a retrieval error.
type SourcesResponse struct {
	InteractionUuid string         `json:"interaction_uuid,omitempty"`
	Sources         []store.Source `json:"sources,omitempty"`
	Error           string         `json:"error,omitempty"`
}

type AddResponseRequest struct {
	UserSessionUuid string `json:"user_session_uuid" validate:"required"`
	InteractionUuid string `json:"interaction_uuid" validate:"required"`
	FullResponse    string `json:"full_response"`
}

type FeedbackRequest struct {
	UserSessionUuid   string   `json:"user_session_uuid" validate:"required"`
	InteractionUuid   string   `json:"interaction_uuid" validate:"required"`
	ModelName         string   `json:"model_name" validate:"required"`
	UseConsiderations bool     `json:"use_considerations"`
	NDocuments        int      `json:"n_documents"`
	WordList          []string `json:"word_list"`
	FeedbackType      string   `json:"feedback_type" validate:"required"`
	Score             string   `json:"score" validate:"required"`
	Text              string   `json:"text"`
}

type FeedbackResponse struct {
	FeedbackId uint            `json:"feedback_id"`
	Sentiment  store.Sentiment `json:"sentiment"`
	Retracted  bool            `json:"retracted"`
}

// StreamRequest is the frame a client sends over the generation socket.
type StreamRequest struct {
	UserSessionUuid   string `json:"user_session_uuid" validate:"required"`
	ModelName         string `json:"model_name"`
	UseConsiderations bool   `json:"use_considerations"`
}

// StreamFrame wraps every frame sent back; Content is a token string or a
// StreamDone.
type StreamFrame struct {
	ResponseUuid string      `json:"response_uuid"`
	Content      interface{} `json:"content"`
}

type StreamDone struct {
	Key string `json:"key"`
	llm.Usage
	SearchDocumentsTime float64       `json:"search_documents_time"`
	CpuUsage            sysusage.Pair `json:"cpu_usage"`
	MemoryUsage         sysusage.Pair `json:"memory_usage"`
}

type StreamError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}
