package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/vector/memory"
)

func TestRankEmptyCollectionReturnsEmptySlice(t *testing.T) {
	ranker := NewRanker(memory.New("brand_posts", wordEmbedder{}), 3)

	got := ranker.Rank(context.Background(), "anything", 3)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRankComputesSimilarityAndKeepsOrder(t *testing.T) {
	store := &spyStore{matches: []domain.StoredMatch{
		{Text: "a", Distance: 0.1},
		{Text: "b", Distance: 0.4},
		{Text: "c", Distance: 0.4},
	}}
	got := NewRanker(store, 3).Rank(context.Background(), "q", 0)

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].Text != want {
			t.Fatalf("expected store order, got %+v", got)
		}
		if got[i].Similarity != 1-got[i].Distance {
			t.Fatalf("expected similarity 1-distance, got %+v", got[i])
		}
	}
}

func TestRankSwallowsStoreFailure(t *testing.T) {
	store := &spyStore{err: errors.New("qdrant down")}
	got := NewRanker(store, 3).Rank(context.Background(), "q", 2)
	if len(got) != 0 {
		t.Fatalf("expected empty result on failure, got %+v", got)
	}
}
