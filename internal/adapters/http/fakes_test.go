package httpadapter

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

type ingestFake struct {
	err       error
	gotName   string
	gotText   string
	callCount int
}

func (f *ingestFake) AddPost(_ context.Context, content, name string) (*domain.Post, error) {
	f.callCount++
	f.gotName = name
	f.gotText = content
	if f.err != nil {
		return nil, f.err
	}
	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	return domain.NewPost(name+"_post_20261016_090000_abcd1234", content, name, at), nil
}

type readerFake struct {
	stats   domain.CollectionStats
	err     error
	post    *domain.Post
	similar []domain.RetrievalResult
	gotK    int
}

func (f *readerFake) Stats(context.Context) (domain.CollectionStats, error) {
	return f.stats, f.err
}

func (f *readerFake) GetByID(_ context.Context, id string) (*domain.Post, error) {
	if f.post == nil || f.post.ID != id {
		return nil, domain.WrapError(domain.ErrPostNotFound, "get post", errors.New("id="+id))
	}
	return f.post, nil
}

func (f *readerFake) Similar(_ context.Context, _ string, k int) []domain.RetrievalResult {
	f.gotK = k
	return f.similar
}

type composerFake struct {
	composition *domain.Composition
	err         error
}

func (f *composerFake) Compose(context.Context, domain.ProductFields) (*domain.Composition, error) {
	return f.composition, f.err
}

type generatorFake struct {
	err error
}

func (f *generatorFake) GeneratePost(_ context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "POST: " + prompt, nil
}

type templatesFake struct {
	saved map[string]string
}

func (f *templatesFake) LoadTemplate(_ context.Context, name string) (string, error) {
	content, ok := f.saved[name]
	if !ok {
		return "", domain.WrapError(domain.ErrTemplateNotFound, "load template", errors.New(name))
	}
	return content, nil
}

func (f *templatesFake) SaveTemplate(_ context.Context, name, content string) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[name] = content
	return nil
}

type decoderFake struct{}

func (decoderFake) Decode(_ context.Context, _ string, body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", domain.NewValidationError("decode upload", "File is empty")
	}
	return string(raw), nil
}
