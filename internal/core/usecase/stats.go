package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

const (
	statsSampleSize  = 5
	statsTitleLength = 30
)

type PostReaderUseCase struct {
	store   ports.PostStore
	catalog ports.PostCatalog
	ranker  *Ranker
}

// NewPostReaderUseCase builds the read model. catalog may be nil.
func NewPostReaderUseCase(store ports.PostStore, catalog ports.PostCatalog, ranker *Ranker) *PostReaderUseCase {
	return &PostReaderUseCase{store: store, catalog: catalog, ranker: ranker}
}

func (uc *PostReaderUseCase) Stats(ctx context.Context) (domain.CollectionStats, error) {
	collection, err := uc.store.EnsureCollection(ctx)
	if err != nil {
		return domain.CollectionStats{}, fmt.Errorf("ensure collection: %w", err)
	}

	count, err := uc.store.Count(ctx)
	if err != nil {
		return domain.CollectionStats{}, fmt.Errorf("count posts: %w", err)
	}
	stats := domain.CollectionStats{
		Count:        count,
		SampleTitles: []string{},
		DatabasePath: collection.Location,
	}
	if count == 0 {
		return stats, nil
	}

	sample, err := uc.store.Sample(ctx, min(count, statsSampleSize))
	if err != nil {
		return domain.CollectionStats{}, fmt.Errorf("sample posts: %w", err)
	}
	for _, meta := range sample {
		title := meta.Title
		if title == "" {
			title = "N/A"
		}
		stats.SampleTitles = append(stats.SampleTitles, domain.TruncateRunes(title, statsTitleLength)+"...")
	}
	return stats, nil
}

func (uc *PostReaderUseCase) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	if uc.catalog == nil {
		return nil, domain.WrapError(domain.ErrPostNotFound, "get post", fmt.Errorf("catalog disabled, id=%s", id))
	}
	return uc.catalog.GetByID(ctx, id)
}

func (uc *PostReaderUseCase) Similar(ctx context.Context, query string, k int) []domain.RetrievalResult {
	return uc.ranker.Rank(ctx, query, k)
}
