// internal/interpreter/genai.go
package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"basobaas-search/internal/common/config"
	"basobaas-search/internal/common/httpx"
)

var (
	ErrLLMTimeout       = errors.New("LLM_TIMEOUT")
	ErrLLMRequestFailed = errors.New("LLM_REQUEST_FAILED")
)

// Completer is the narrow language-model capability the interpreter
// depends on: one prompt in, one text completion out.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userQuery string) (string, error)
}

// GenAIClient calls an OpenAI-compatible chat-completions endpoint.
type GenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *httpx.Client
}

// NewGenAIClient returns nil when no credential is configured, which
// routes every query straight to the fallback parser.
func NewGenAIClient(cfg config.APIsConfig) *GenAIClient {
	if cfg.GenAI.APIKey == "" {
		return nil
	}
	return &GenAIClient{
		baseURL: cfg.GenAI.BaseURL,
		apiKey:  cfg.GenAI.APIKey,
		model:   cfg.GenAI.Model,
		client:  httpx.NewClient(config.GetDuration(cfg.GenAI.Timeout)),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *GenAIClient) Complete(ctx context.Context, systemPrompt, userQuery string) (string, error) {
	body, _ := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userQuery},
		},
		Temperature: 0,
		MaxTokens:   512,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return "", ErrLLMTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrLLMRequestFailed, resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrLLMRequestFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrLLMRequestFailed)
	}

	return parsed.Choices[0].Message.Content, nil
}
