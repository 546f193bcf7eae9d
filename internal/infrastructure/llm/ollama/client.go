package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/llm/transport"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/resilience"
)

type Client struct {
	http *transport.Client
}

// New builds a client for the Ollama host at baseURL. executor may be nil.
func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	return &Client{http: transport.New(string(domain.BackendOllama), baseURL, timeout, executor)}
}

func (c *Client) Host() string {
	return c.http.BaseURL()
}

type Embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Binding() domain.EmbeddingBinding {
	return domain.EmbeddingBinding{Model: e.model, Endpoint: e.client.Host()}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.model,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.http.PostJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: expected %d vectors, got %d", len(texts), len(response.Embeddings))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Generator serves domain.GenerationRequest through /api/generate.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("ollama generate: model is required")
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	reqBody := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
		"stream": false,
	}
	if len(options) > 0 {
		reqBody["options"] = options
	}

	var response struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := g.client.http.PostJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	if response.Error != "" {
		return "", fmt.Errorf("ollama generate: %s", response.Error)
	}
	return response.Response, nil
}
