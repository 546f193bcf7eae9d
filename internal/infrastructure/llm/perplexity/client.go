// Package perplexity talks to the Perplexity chat-completions API.
package perplexity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/llm/transport"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.perplexity.ai"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type Client struct {
	http *transport.Client
}

// New builds a client authenticated with apiKey. executor may be nil.
func New(baseURL, apiKey string, timeout time.Duration, executor *resilience.Executor) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	tc := transport.New(string(domain.BackendPerplexity), baseURL, timeout, executor).
		WithHeader("Authorization", "Bearer "+apiKey).
		WithHeader("Accept", "application/json")
	return &Client{http: tc}
}

// Generate sends the prompt as a single user message and returns the first
// choice's content.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("perplexity chat: model is required")
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		body.MaxTokens = &maxTokens
	}

	var resp chatResponse
	if err := c.http.PostJSON(ctx, "/chat/completions", body, &resp, "chat"); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("perplexity chat: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
