package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

// Ranker turns nearest-neighbour hits into similarity-scored results.
type Ranker struct {
	store    ports.PostStore
	defaultK int
}

func NewRanker(store ports.PostStore, defaultK int) *Ranker {
	if defaultK <= 0 {
		defaultK = 3
	}
	return &Ranker{store: store, defaultK: defaultK}
}

// Rank returns up to k results in store order (ascending distance). A store
// failure is logged and reported as "no similar posts", never as an error.
func (r *Ranker) Rank(ctx context.Context, query string, k int) []domain.RetrievalResult {
	if k <= 0 {
		k = r.defaultK
	}

	matches, err := r.store.Query(ctx, query, k)
	if err != nil {
		slog.Warn("similar_posts_retrieval_failed", "k", k, "error", err)
		return []domain.RetrievalResult{}
	}

	out := make([]domain.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.NewRetrievalResult(m))
	}
	return out
}
