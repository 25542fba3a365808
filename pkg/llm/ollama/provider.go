package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"resolution-rag-be/pkg/llm"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
	// StreamClient has no overall timeout; streams end with their context.
	StreamClient *http.Client
}

var (
	_ llm.LLMProvider       = &OllamaProvider{}
	_ llm.StreamingProvider = &OllamaProvider{}
)

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:      baseURL,
		ModelName:    modelName,
		Client:       &http.Client{Timeout: 120 * time.Second},
		StreamClient: &http.Client{},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	NumThread   int     `json:"num_thread,omitempty"`
}

type ollamaChatResponse struct {
	Model     string        `json:"model"`
	CreatedAt time.Time     `json:"created_at"`
	Message   ollamaMessage `json:"message"`
	Done      bool          `json:"done"`
	Error     string        `json:"error,omitempty"`

	TotalDuration      int64 `json:"total_duration"`
	LoadDuration       int64 `json:"load_duration"`
	PromptEvalCount    int   `json:"prompt_eval_count"`
	PromptEvalDuration int64 `json:"prompt_eval_duration"`
	EvalCount          int   `json:"eval_count"`
	EvalDuration       int64 `json:"eval_duration"`
}

func (r *ollamaChatResponse) usage() *llm.Usage {
	return &llm.Usage{
		CreatedAt:          r.CreatedAt,
		TotalDuration:      r.TotalDuration,
		LoadDuration:       r.LoadDuration,
		PromptEvalCount:    r.PromptEvalCount,
		PromptEvalDuration: r.PromptEvalDuration,
		EvalCount:          r.EvalCount,
		EvalDuration:       r.EvalDuration,
	}
}

func (o *OllamaProvider) newRequest(ctx context.Context, history []llm.Message, stream bool, opts []llm.Option) (*http.Request, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7}, opts...)

	messages := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = ollamaMessage{Role: role, Content: msg.Content}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload, err := json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   stream,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
			TopK:        options.TopK,
			NumThread:   options.NumThread,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	req, err := o.newRequest(ctx, history, false, opts)
	if err != nil {
		return "", err
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return ollamaResp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// ChatStream reads Ollama's newline-delimited JSON stream. The channel is
// closed after the done chunk, an error chunk, or context cancellation.
func (o *OllamaProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	req, err := o.newRequest(ctx, history, true, opts)
	if err != nil {
		return nil, err
	}

	resp, err := o.StreamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(body))
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		send := func(c llm.StreamChunk) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				send(llm.StreamChunk{Err: fmt.Errorf("decode stream chunk: %w", err)})
				return
			}
			if chunk.Error != "" {
				send(llm.StreamChunk{Err: fmt.Errorf("ollama stream error: %s", chunk.Error)})
				return
			}
			if chunk.Done {
				send(llm.StreamChunk{Content: chunk.Message.Content, Done: true, Usage: chunk.usage()})
				return
			}
			if !send(llm.StreamChunk{Content: chunk.Message.Content}) {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			send(llm.StreamChunk{Err: fmt.Errorf("read stream: %w", err)})
		}
	}()
	return out, nil
}
