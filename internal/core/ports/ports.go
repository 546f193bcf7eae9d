package ports

import (
	"context"
	"io"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// Embedder builds vectors for stored posts and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Binding() domain.EmbeddingBinding
}

// PostStore owns the embedding-indexed collection of posts.
type PostStore interface {
	EnsureCollection(ctx context.Context) (domain.Collection, error)
	Add(ctx context.Context, post *domain.Post) error
	Count(ctx context.Context) (int, error)
	Sample(ctx context.Context, limit int) ([]domain.PostMetadata, error)
	Query(ctx context.Context, text string, k int) ([]domain.StoredMatch, error)
}

// PostCatalog keeps a relational record of every ingested post.
type PostCatalog interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
}

// EventPublisher announces ingested posts to downstream consumers.
type EventPublisher interface {
	PublishPostIngested(ctx context.Context, postID string) error
}

// TemplateStore reads and writes externally authored prompt templates verbatim.
type TemplateStore interface {
	Load(ctx context.Context, name string) (string, error)
	Save(ctx context.Context, name, content string) error
}

// TextGenerator is a single text-generation backend.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// GenerationDispatcher routes a request to the backend registered under id.
type GenerationDispatcher interface {
	Generate(ctx context.Context, backend domain.BackendID, req domain.GenerationRequest) (string, error)
}

// UploadDecoder turns an uploaded file into post text.
type UploadDecoder interface {
	Decode(ctx context.Context, filename string, body io.Reader) (string, error)
}
