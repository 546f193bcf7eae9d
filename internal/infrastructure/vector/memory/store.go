// Package memory is a process-local post store using brute-force cosine
// distance. It backs tests and VECTOR_BACKEND=memory.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

type entry struct {
	post   domain.Post
	vector []float32
}

type Store struct {
	name     string
	embedder ports.Embedder

	mu         sync.RWMutex
	entries    []entry
	ids        map[string]struct{}
	vectorSize int
}

func New(name string, embedder ports.Embedder) *Store {
	return &Store{
		name:     name,
		embedder: embedder,
		ids:      make(map[string]struct{}),
	}
}

func (s *Store) EnsureCollection(context.Context) (domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Collection{
		Name:       s.name,
		Location:   "memory://" + s.name,
		Binding:    s.embedder.Binding(),
		VectorSize: s.vectorSize,
	}, nil
}

func (s *Store) Add(ctx context.Context, post *domain.Post) error {
	s.mu.RLock()
	_, exists := s.ids[post.ID]
	s.mu.RUnlock()
	if exists {
		return domain.WrapError(domain.ErrDuplicateID, "add post", fmt.Errorf("id=%s", post.ID))
	}

	vectors, err := s.embedder.Embed(ctx, []string{post.Content})
	if err != nil {
		return fmt.Errorf("embed post: %w", err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embed post: expected 1 vector, got %d", len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[post.ID]; exists {
		return domain.WrapError(domain.ErrDuplicateID, "add post", fmt.Errorf("id=%s", post.ID))
	}
	if s.vectorSize == 0 {
		s.vectorSize = len(vectors[0])
	}
	if len(vectors[0]) != s.vectorSize {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vectors[0]), s.vectorSize)
	}
	s.ids[post.ID] = struct{}{}
	s.entries = append(s.entries, entry{post: *post, vector: vectors[0]})
	return nil
}

func (s *Store) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Store) Sample(_ context.Context, limit int) ([]domain.PostMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(max(limit, 0), len(s.entries))
	out := make([]domain.PostMetadata, 0, n)
	for _, e := range s.entries[:n] {
		out = append(out, e.post.Metadata)
	}
	return out, nil
}

func (s *Store) Query(ctx context.Context, text string, k int) ([]domain.StoredMatch, error) {
	s.mu.RLock()
	count := len(s.entries)
	s.mu.RUnlock()
	if count == 0 || k <= 0 {
		return []domain.StoredMatch{}, nil
	}

	query, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	matches := make([]domain.StoredMatch, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, domain.StoredMatch{
			Text:     e.post.Content,
			Metadata: e.post.Metadata,
			Distance: 1 - cosine(e.vector, query),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches[:min(k, len(matches))], nil
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
