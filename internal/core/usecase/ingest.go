package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

type IngestPostUseCase struct {
	store         ports.PostStore
	catalog       ports.PostCatalog
	events        ports.EventPublisher
	minPostLength int
	now           func() time.Time
}

// NewIngestPostUseCase wires ingestion. catalog and events may be nil.
func NewIngestPostUseCase(
	store ports.PostStore,
	catalog ports.PostCatalog,
	events ports.EventPublisher,
	minPostLength int,
) *IngestPostUseCase {
	return &IngestPostUseCase{
		store:         store,
		catalog:       catalog,
		events:        events,
		minPostLength: minPostLength,
		now:           time.Now,
	}
}

func (uc *IngestPostUseCase) AddPost(ctx context.Context, content, name string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("add post", "Empty file - Type or load an Instagram post")
	}

	now := uc.now().UTC()
	label := sanitizeLabel(name)
	post := domain.NewPost(newPostID(label, now), content, label, now)

	if uc.minPostLength > 0 && utf8.RuneCountInString(content) < uc.minPostLength {
		slog.Warn("short_post_ingested",
			"post_id", post.ID,
			"length", utf8.RuneCountInString(content),
			"min_length", uc.minPostLength,
		)
	}

	if err := uc.store.Add(ctx, post); err != nil {
		return nil, fmt.Errorf("add post to collection: %w", err)
	}

	if uc.catalog != nil {
		if err := uc.catalog.Create(ctx, post); err != nil {
			slog.Warn("post_catalog_write_failed", "post_id", post.ID, "error", err)
		}
	}
	if uc.events != nil {
		if err := uc.events.PublishPostIngested(ctx, post.ID); err != nil {
			slog.Warn("post_ingested_event_failed", "post_id", post.ID, "error", err)
		}
	}

	return post, nil
}

// newPostID joins label and ingestion second with a random nonce so two posts
// ingested under the same label within one second never collide.
func newPostID(label string, at time.Time) string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	id := fmt.Sprintf("post_%s_%s", at.Format("20060102_150405"), nonce)
	if label != "" {
		id = label + "_" + id
	}
	return id
}

func sanitizeLabel(name string) string {
	base := strings.TrimSpace(name)
	base = strings.ReplaceAll(base, " ", "_")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

// SuccessMessage is the confirmation shown after a post is stored.
func SuccessMessage(post *domain.Post) string {
	return fmt.Sprintf("✅ Successfully added post '%s...' (ID: %s)",
		domain.TruncateRunes(post.Sections[domain.SectionTitle], 50), post.ID)
}
