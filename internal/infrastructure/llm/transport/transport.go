// Package transport is the JSON-over-HTTP client shared by the model backends.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/resilience"
)

type Client struct {
	backend        string
	baseURL        string
	httpClient     *http.Client
	defaultTimeout time.Duration
	executor       *resilience.Executor
	headers        map[string]string
}

// New builds a client for one backend. executor may be nil. timeout bounds
// calls whose context carries no deadline; a caller deadline always wins,
// longer or shorter.
func New(backend, baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		backend:        backend,
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		defaultTimeout: timeout,
		executor:       executor,
		headers:        map[string]string{},
	}
}

// WithHeader adds a header sent on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends payload to path and decodes the response into out. Transport
// failures come back wrapped in domain.ErrConnectivity.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.defaultTimeout)
		defer cancel()
	}

	call := func(ctx context.Context) error {
		return c.postOnce(ctx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, c.backend+"."+operation, call, Classify)
	} else {
		err = call(ctx)
	}
	return wrapConnectivityIfNeeded(c.backend+" "+operation, err)
}

func (c *Client) postOnce(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request: %w", c.backend, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{
			Backend:    c.backend,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
