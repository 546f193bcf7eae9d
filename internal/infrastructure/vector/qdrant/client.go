package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

// errNotFound marks a 404 from Qdrant so callers can treat it as "absent".
var errNotFound = errors.New("qdrant: not found")

type pointPayload struct {
	Text                string    `json:"text"`
	PostID              string    `json:"post_id"`
	Title               string    `json:"title"`
	BrandValues         string    `json:"brand_values"`
	DateAdded           time.Time `json:"date_added"`
	WordCount           int       `json:"word_count"`
	HasOlfactoryPyramid bool      `json:"has_olfactory_pyramid"`
	PostName            string    `json:"post_name"`
	EmbeddingModel      string    `json:"embedding_model"`
}

func (p pointPayload) metadata() domain.PostMetadata {
	return domain.PostMetadata{
		PostID:              p.PostID,
		Title:               p.Title,
		BrandValues:         p.BrandValues,
		DateAdded:           p.DateAdded,
		WordCount:           p.WordCount,
		HasOlfactoryPyramid: p.HasOlfactoryPyramid,
		PostName:            p.PostName,
	}
}

// Client is a PostStore over the Qdrant REST API. Vectors come from the
// embedder the collection is bound to.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	embedder   ports.Embedder
	httpClient *http.Client

	ensureMu   sync.Mutex
	ensured    bool
	vectorSize int
}

func New(baseURL, apiKey, collection string, embedder ports.Embedder) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) EnsureCollection(ctx context.Context) (domain.Collection, error) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()

	if !c.ensured {
		existing, err := c.collectionVectorSize(ctx)
		if err != nil && !errors.Is(err, errNotFound) {
			return domain.Collection{}, err
		}
		size, embedErr := c.embeddingSize(ctx)
		if embedErr != nil {
			return domain.Collection{}, embedErr
		}
		if errors.Is(err, errNotFound) {
			if err := c.createCollection(ctx, size); err != nil {
				return domain.Collection{}, err
			}
		} else if existing != size {
			return domain.Collection{}, fmt.Errorf(
				"collection %s stores %d-dimension vectors but embedding model %s produces %d",
				c.collection, existing, c.embedder.Binding().Model, size,
			)
		}
		c.ensured = true
		c.vectorSize = size
	}

	return domain.Collection{
		Name:       c.collection,
		Location:   c.collectionURL(),
		Binding:    c.embedder.Binding(),
		VectorSize: c.vectorSize,
	}, nil
}

func (c *Client) Add(ctx context.Context, post *domain.Post) error {
	if _, err := c.EnsureCollection(ctx); err != nil {
		return err
	}

	id := pointID(c.collection, post.ID)
	err := c.do(ctx, http.MethodGet, "/points/"+id, nil, nil, "get point")
	switch {
	case err == nil:
		return domain.WrapError(domain.ErrDuplicateID, "add post", fmt.Errorf("id=%s", post.ID))
	case !errors.Is(err, errNotFound):
		return err
	}

	vectors, err := c.embedder.Embed(ctx, []string{post.Content})
	if err != nil {
		return fmt.Errorf("embed post: %w", err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embed post: expected 1 vector, got %d", len(vectors))
	}

	meta := post.Metadata
	body := map[string]any{
		"points": []map[string]any{{
			"id":     id,
			"vector": vectors[0],
			"payload": pointPayload{
				Text:                post.Content,
				PostID:              post.ID,
				Title:               meta.Title,
				BrandValues:         meta.BrandValues,
				DateAdded:           meta.DateAdded,
				WordCount:           meta.WordCount,
				HasOlfactoryPyramid: meta.HasOlfactoryPyramid,
				PostName:            meta.PostName,
				EmbeddingModel:      c.embedder.Binding().Model,
			},
		}},
	}
	return c.do(ctx, http.MethodPut, "/points?wait=true", body, nil, "upsert")
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := c.do(ctx, http.MethodPost, "/points/count", map[string]any{"exact": true}, &resp, "count")
	if errors.Is(err, errNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (c *Client) Sample(ctx context.Context, limit int) ([]domain.PostMetadata, error) {
	if limit <= 0 {
		return []domain.PostMetadata{}, nil
	}
	var resp struct {
		Result struct {
			Points []struct {
				Payload pointPayload `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	body := map[string]any{"limit": limit, "with_payload": true, "with_vector": false}
	err := c.do(ctx, http.MethodPost, "/points/scroll", body, &resp, "scroll")
	if errors.Is(err, errNotFound) {
		return []domain.PostMetadata{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.PostMetadata, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		out = append(out, p.Payload.metadata())
	}
	return out, nil
}

func (c *Client) Query(ctx context.Context, text string, k int) ([]domain.StoredMatch, error) {
	count, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 || k <= 0 {
		return []domain.StoredMatch{}, nil
	}

	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var resp struct {
		Result []struct {
			Score   float64      `json:"score"`
			Payload pointPayload `json:"payload"`
		} `json:"result"`
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        min(k, count),
		"with_payload": true,
	}
	if err := c.do(ctx, http.MethodPost, "/points/search", body, &resp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.StoredMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.StoredMatch{
			Text:     r.Payload.Text,
			Metadata: r.Payload.metadata(),
			Distance: 1 - r.Score,
		})
	}
	return out, nil
}

func (c *Client) collectionVectorSize(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "", nil, &resp, "get collection"); err != nil {
		return 0, err
	}
	return resp.Result.Config.Params.Vectors.Size, nil
}

// embeddingSize embeds a fixed sentence to learn the embedder's dimension.
// It also surfaces an unreachable embedding backend at collection access.
func (c *Client) embeddingSize(ctx context.Context) (int, error) {
	sample, err := c.embedder.EmbedQuery(ctx, "embedding dimension check")
	if err != nil {
		return 0, fmt.Errorf("check embedding size: %w", err)
	}
	if len(sample) == 0 {
		return 0, fmt.Errorf("check embedding size: embedder returned an empty vector")
	}
	return len(sample), nil
}

// createCollection creates a cosine collection of the given vector size.
func (c *Client) createCollection(ctx context.Context, size int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     size,
			"distance": "Cosine",
		},
	}
	err := c.do(ctx, http.MethodPut, "", body, nil, "create collection")
	if err != nil && !isConflict(err) {
		return err
	}
	return nil
}

func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any, operation string) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.collectionURL()+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(domain.ErrConnectivity, "qdrant "+operation, err)
		}
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qdrant %s: %w", operation, errNotFound)
	}
	if resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

type httpStatusError struct {
	status int
	msg    string
}

func (e *httpStatusError) Error() string { return e.msg }

func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := fmt.Sprintf("qdrant %s status: %s", operation, resp.Status)
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		msg += ": " + trimmed
	}
	return &httpStatusError{status: resp.StatusCode, msg: msg}
}

func isConflict(err error) bool {
	var statusErr *httpStatusError
	return errors.As(err, &statusErr) && statusErr.status == http.StatusConflict
}

// pointID maps a post id to the stable UUID Qdrant requires as a point id.
func pointID(collection, postID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+postID)).String()
}
