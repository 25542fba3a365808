package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/llm"
	"resolution-rag-be/pkg/rag/prompt"
	"resolution-rag-be/pkg/rag/session"
	"resolution-rag-be/pkg/store"
	"resolution-rag-be/pkg/sysusage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerationService(provider *fakeLLM, sessions *session.Manager) IGenerationService {
	return NewGenerationService(
		provider,
		prompt.NewBuilder(prompt.Assistant{Name: "Asistente", Area: "Secretaría General"}),
		sessions,
		sysusage.NewSampler(0),
		GenerationConfig{Temperature: 0.2, TopK: 10, NumThread: 4},
		logger.NewNopLogger(),
	)
}

func TestGenerationService_Stream(t *testing.T) {
	sessions := newSessions()
	in := sessions.Open("s1", store.Interaction{
		Query:          "¿Qué se aprobó?",
		Context:        "RESOLUCIÓN 045.CP.2024 resuelve: aprobar el reglamento",
		Sources:        sampleResult().Sources,
		SearchDuration: 1500 * time.Millisecond,
	})
	provider := &fakeLLM{reply: "Se aprobó el reglamento."}
	svc := newGenerationService(provider, sessions)

	var frames []dto.StreamFrame
	err := svc.Stream(context.Background(), &dto.StreamRequest{UserSessionUuid: "s1", ModelName: "llama3"}, func(f dto.StreamFrame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, frames, 2)
	assert.Equal(t, "Se aprobó el reglamento.", frames[0].Content)
	assert.NotEmpty(t, frames[0].ResponseUuid)
	assert.Equal(t, frames[0].ResponseUuid, frames[1].ResponseUuid)

	done, ok := frames[1].Content.(dto.StreamDone)
	require.True(t, ok, "last frame carries the completion summary")
	assert.Equal(t, constant.MessageDoneKey, done.Key)
	assert.InDelta(t, 1.5, done.SearchDocumentsTime, 0.001)

	last, err := sessions.LastInteraction("s1")
	require.NoError(t, err)
	assert.Equal(t, in.ID, last.ID)
	assert.Equal(t, "Se aprobó el reglamento.", last.FullResponse)

	assert.Equal(t, "llama3", provider.options.Model)
	assert.Equal(t, 10, provider.options.TopK)
	assert.Equal(t, 4, provider.options.NumThread)
	require.NotEmpty(t, provider.history)
	assert.Equal(t, "system", provider.history[0].Role)
}

func TestGenerationService_StreamErrors(t *testing.T) {
	modelErr := errors.New("model not loaded")
	tests := []struct {
		name    string
		setup   func(m *session.Manager)
		llmErr  error
		wantErr error
	}{
		{name: "unknown session", setup: func(m *session.Manager) {}, wantErr: session.ErrSessionNotFound},
		{name: "session without interactions", setup: func(m *session.Manager) { m.TouchOrCreate("s1") }, wantErr: session.ErrInteractionNotFound},
		{
			name:    "model failure",
			setup:   func(m *session.Manager) { m.Open("s1", store.Interaction{Query: "q"}) },
			llmErr:  modelErr,
			wantErr: modelErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newSessions()
			tt.setup(sessions)
			svc := newGenerationService(&fakeLLM{reply: "x", err: tt.llmErr}, sessions)

			var frames int
			err := svc.Stream(context.Background(), &dto.StreamRequest{UserSessionUuid: "s1"}, func(dto.StreamFrame) error {
				frames++
				return nil
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, frames)
		})
	}
}

func TestGenerationService_EmitFailureStopsStream(t *testing.T) {
	sessions := newSessions()
	sessions.Open("s1", store.Interaction{Query: "q"})
	svc := newGenerationService(&fakeLLM{reply: "respuesta"}, sessions)

	closed := errors.New("connection closed")
	err := svc.Stream(context.Background(), &dto.StreamRequest{UserSessionUuid: "s1"}, func(dto.StreamFrame) error {
		return closed
	})
	assert.ErrorIs(t, err, closed)

	last, err := sessions.LastInteraction("s1")
	require.NoError(t, err)
	assert.Empty(t, last.FullResponse)
}

// tokenStreamer streams tokens until the caller's context ends. stopped is
// closed when its producer goroutine exits.
type tokenStreamer struct {
	fakeLLM
	tokens  []string
	stopped chan struct{}
}

func (p *tokenStreamer) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.StreamChunk, error) {
	out := make(chan llm.StreamChunk)
	go func() {
		defer close(p.stopped)
		defer close(out)
		for _, tok := range p.tokens {
			select {
			case out <- llm.StreamChunk{Content: tok}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case out <- llm.StreamChunk{Done: true}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func TestGenerationService_DisconnectStopsStream(t *testing.T) {
	sessions := newSessions()
	sessions.Open("s1", store.Interaction{Query: "q"})
	provider := &tokenStreamer{tokens: []string{"Se ", "aprobó ", "el ", "reglamento."}, stopped: make(chan struct{})}
	svc := NewGenerationService(
		provider,
		prompt.NewBuilder(prompt.Assistant{Name: "Asistente", Area: "Secretaría General"}),
		sessions,
		sysusage.NewSampler(0),
		GenerationConfig{},
		logger.NewNopLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var frames []dto.StreamFrame
	err := svc.Stream(ctx, &dto.StreamRequest{UserSessionUuid: "s1"}, func(f dto.StreamFrame) error {
		frames = append(frames, f)
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, frames, 1)
	assert.Equal(t, "Se ", frames[0].Content)

	select {
	case <-provider.stopped:
	case <-time.After(time.Second):
		t.Fatal("provider stream still running after cancellation")
	}

	last, err := sessions.LastInteraction("s1")
	require.NoError(t, err)
	assert.Empty(t, last.FullResponse)
}
