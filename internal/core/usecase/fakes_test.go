package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// spyStore counts every call so tests can assert that nothing external ran.
type spyStore struct {
	mu      sync.Mutex
	calls   int
	count   int
	countFn func() (int, error)
	matches []domain.StoredMatch
	err     error
	added   []*domain.Post
}

func (s *spyStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *spyStore) EnsureCollection(context.Context) (domain.Collection, error) {
	s.hit()
	return domain.Collection{Name: "spy", Location: "spy://posts"}, nil
}

func (s *spyStore) Add(_ context.Context, post *domain.Post) error {
	s.hit()
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, post)
	s.count++
	return nil
}

func (s *spyStore) Count(context.Context) (int, error) {
	s.hit()
	if s.countFn != nil {
		return s.countFn()
	}
	return s.count, nil
}

func (s *spyStore) Sample(_ context.Context, limit int) ([]domain.PostMetadata, error) {
	s.hit()
	out := make([]domain.PostMetadata, 0, limit)
	for _, p := range s.added {
		if len(out) == limit {
			break
		}
		out = append(out, p.Metadata)
	}
	return out, nil
}

func (s *spyStore) Query(context.Context, string, int) ([]domain.StoredMatch, error) {
	s.hit()
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

type dispatchCall struct {
	backend domain.BackendID
	req     domain.GenerationRequest
}

// dispatcherFake answers per backend. A backend without a canned answer
// echoes the prompt back.
type dispatcherFake struct {
	calls   []dispatchCall
	answers map[domain.BackendID]string
	errs    map[domain.BackendID]error
}

func (d *dispatcherFake) Generate(_ context.Context, backend domain.BackendID, req domain.GenerationRequest) (string, error) {
	d.calls = append(d.calls, dispatchCall{backend: backend, req: req})
	if err := d.errs[backend]; err != nil {
		return "", err
	}
	if answer, ok := d.answers[backend]; ok {
		return answer, nil
	}
	return req.Prompt, nil
}

type templateStoreFake struct {
	loads     int
	templates map[string]string
}

func (f *templateStoreFake) Load(_ context.Context, name string) (string, error) {
	f.loads++
	text, ok := f.templates[name]
	if !ok {
		return "", domain.WrapError(domain.ErrTemplateNotFound, "load template", errors.New(name))
	}
	return text, nil
}

func (f *templateStoreFake) Save(_ context.Context, name, content string) error {
	if f.templates == nil {
		f.templates = map[string]string{}
	}
	f.templates[name] = content
	return nil
}

type catalogFake struct {
	created []string
	err     error
}

func (f *catalogFake) Create(_ context.Context, post *domain.Post) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, post.ID)
	return nil
}

func (f *catalogFake) GetByID(_ context.Context, id string) (*domain.Post, error) {
	for _, created := range f.created {
		if created == id {
			return &domain.Post{ID: id}, nil
		}
	}
	return nil, domain.WrapError(domain.ErrPostNotFound, "get post", errors.New(id))
}

type eventsFake struct {
	published []string
	err       error
}

func (f *eventsFake) PublishPostIngested(_ context.Context, postID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, postID)
	return nil
}

// wordEmbedder is a deterministic bag-of-words embedder for store-backed tests.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, bagOfWords(t))
	}
	return out, nil
}

func (wordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return bagOfWords(text), nil
}

func (wordEmbedder) Binding() domain.EmbeddingBinding {
	return domain.EmbeddingBinding{Model: "words", Endpoint: "local"}
}

func bagOfWords(text string) []float32 {
	v := make([]float32, 64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, r := range w {
			h = h*31 + uint32(r)
		}
		v[h%64]++
	}
	v[63] += 0.01
	return v
}
