package ports

import (
	"context"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// PostIngestor is the inbound contract for adding posts to the knowledge base.
type PostIngestor interface {
	AddPost(ctx context.Context, content, name string) (*domain.Post, error)
}

// PostReader is the inbound read model over the knowledge base.
type PostReader interface {
	Stats(ctx context.Context) (domain.CollectionStats, error)
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Similar(ctx context.Context, query string, k int) []domain.RetrievalResult
}

// PromptComposer is the inbound contract for retrieval-augmented prompt composition.
type PromptComposer interface {
	Compose(ctx context.Context, fields domain.ProductFields) (*domain.Composition, error)
}

// PostGenerator turns a composed prompt into the final post text.
type PostGenerator interface {
	GeneratePost(ctx context.Context, prompt string) (string, error)
}

// TemplateEditor exposes the prompt templates for reading and editing.
type TemplateEditor interface {
	LoadTemplate(ctx context.Context, name string) (string, error)
	SaveTemplate(ctx context.Context, name, content string) error
}
