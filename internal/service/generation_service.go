package service

import (
	"context"
	"errors"
	"strings"

	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/llm"
	"resolution-rag-be/pkg/rag/prompt"
	"resolution-rag-be/pkg/rag/session"
	"resolution-rag-be/pkg/sysusage"

	"github.com/google/uuid"
)

// ErrEmptyGeneration is returned when the model closed the stream without
// a final usage chunk.
var ErrEmptyGeneration = errors.New("generation ended without completion")

type GenerationConfig struct {
	Temperature float64
	TopK        int
	NumThread   int
}

type IGenerationService interface {
	// Stream answers the latest interaction of a session, handing every
	// frame to emit. The accumulated answer is stored on the interaction.
	Stream(ctx context.Context, req *dto.StreamRequest, emit func(dto.StreamFrame) error) error
}

type generationService struct {
	llmProvider llm.LLMProvider
	builder     *prompt.Builder
	sessions    *session.Manager
	sampler     *sysusage.Sampler
	cfg         GenerationConfig
	logger      logger.ILogger
}

func NewGenerationService(
	llmProvider llm.LLMProvider,
	builder *prompt.Builder,
	sessions *session.Manager,
	sampler *sysusage.Sampler,
	cfg GenerationConfig,
	logger logger.ILogger,
) IGenerationService {
	return &generationService{
		llmProvider: llmProvider,
		builder:     builder,
		sessions:    sessions,
		sampler:     sampler,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *generationService) Stream(ctx context.Context, req *dto.StreamRequest, emit func(dto.StreamFrame) error) error {
	history := s.sessions.History(req.UserSessionUuid)
	if history == nil {
		if _, ok := s.sessions.Get(req.UserSessionUuid); !ok {
			return session.ErrSessionNotFound
		}
	}
	if len(history) == 0 {
		return session.ErrInteractionNotFound
	}
	last := history[len(history)-1]

	initial := s.sampler.Take(ctx)
	messages := s.builder.Messages(history, req.UseConsiderations)

	opts := []llm.Option{
		llm.WithTemperature(s.cfg.Temperature),
		llm.WithTopK(s.cfg.TopK),
		llm.WithNumThread(s.cfg.NumThread),
	}
	if req.ModelName != "" {
		opts = append(opts, llm.WithModel(req.ModelName))
	}

	chunks, err := llm.Stream(ctx, s.llmProvider, messages, opts...)
	if err != nil {
		return err
	}

	responseUuid := uuid.NewString()
	var answer strings.Builder
	for {
		var chunk llm.StreamChunk
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok = <-chunks:
		}
		if !ok {
			break
		}
		// A disconnect may race with a ready chunk.
		if err := ctx.Err(); err != nil {
			return err
		}
		if chunk.Err != nil {
			s.logger.Error("GENERATION", "Stream failed", map[string]interface{}{
				"session":     req.UserSessionUuid,
				"interaction": last.ID,
				"error":       chunk.Err,
			})
			return chunk.Err
		}
		if chunk.Content != "" {
			answer.WriteString(chunk.Content)
			if err := emit(dto.StreamFrame{ResponseUuid: responseUuid, Content: chunk.Content}); err != nil {
				return err
			}
		}
		if !chunk.Done {
			continue
		}

		s.sessions.UpdateLastResponse(req.UserSessionUuid, last.ID, answer.String())

		cpuUsage, memoryUsage := sysusage.Between(initial, s.sampler.Take(ctx))
		done := dto.StreamDone{
			Key:                 constant.MessageDoneKey,
			SearchDocumentsTime: last.SearchDuration.Seconds(),
			CpuUsage:            cpuUsage,
			MemoryUsage:         memoryUsage,
		}
		if chunk.Usage != nil {
			done.Usage = *chunk.Usage
		}

		s.logger.Info("GENERATION", "Answer streamed", map[string]interface{}{
			"session":        req.UserSessionUuid,
			"interaction":    last.ID,
			"response":       responseUuid,
			"eval_count":     done.EvalCount,
			"total_duration": done.TotalDuration,
		})
		return emit(dto.StreamFrame{ResponseUuid: responseUuid, Content: done})
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrEmptyGeneration
}
