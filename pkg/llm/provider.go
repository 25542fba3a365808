package llm

import (
	"context"
	"time"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	TopK        int
	NumThread   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithNumThread(n int) Option {
	return func(o *Options) {
		o.NumThread = n
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// Apply folds opts over base.
func Apply(base Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Usage carries the timing counters reported once generation is done.
type Usage struct {
	CreatedAt          time.Time `json:"created_at"`
	TotalDuration      int64     `json:"total_duration"`
	LoadDuration       int64     `json:"load_duration"`
	PromptEvalCount    int       `json:"prompt_eval_count"`
	PromptEvalDuration int64     `json:"prompt_eval_duration"`
	EvalCount          int       `json:"eval_count"`
	EvalDuration       int64     `json:"eval_duration"`
}

// StreamChunk is one piece of a streamed answer. The last chunk has Done set
// and carries Usage; a chunk with Err ends the stream.
type StreamChunk struct {
	Content string
	Done    bool
	Usage   *Usage
	Err     error
}

// StreamingProvider is implemented by backends that can stream tokens.
type StreamingProvider interface {
	LLMProvider
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan StreamChunk, error)
}

// Stream streams from p when it supports it, otherwise it runs a blocking
// Chat and delivers the answer as a single chunk followed by Done.
func Stream(ctx context.Context, p LLMProvider, history []Message, options ...Option) (<-chan StreamChunk, error) {
	if sp, ok := p.(StreamingProvider); ok {
		return sp.ChatStream(ctx, history, options...)
	}

	out := make(chan StreamChunk, 2)
	go func() {
		defer close(out)
		start := time.Now()
		text, err := p.Chat(ctx, history, options...)
		if err != nil {
			out <- StreamChunk{Err: err}
			return
		}
		out <- StreamChunk{Content: text}
		out <- StreamChunk{Done: true, Usage: &Usage{
			CreatedAt:     time.Now(),
			TotalDuration: time.Since(start).Nanoseconds(),
		}}
	}()
	return out, nil
}
