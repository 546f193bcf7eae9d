package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// TemplateStore keeps prompt templates as files under one directory. Content
// is read and written byte for byte.
type TemplateStore struct {
	basePath string
}

func NewTemplateStore(basePath string) (*TemplateStore, error) {
	if basePath == "" {
		basePath = "./templates"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create templates dir: %w", err)
	}
	return &TemplateStore{basePath: basePath}, nil
}

func (s *TemplateStore) Load(_ context.Context, name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.WrapError(domain.ErrTemplateNotFound, "load template", fmt.Errorf("%s", path))
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(raw), nil
}

// Save replaces the template atomically.
func (s *TemplateStore) Save(_ context.Context, name, content string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp template: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write template %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close template %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace template %s: %w", name, err)
	}
	return nil
}

func (s *TemplateStore) resolve(name string) (string, error) {
	clean := filepath.Clean(strings.TrimSpace(name))
	if clean == "." || clean == "" || filepath.IsAbs(clean) || clean != filepath.Base(clean) {
		return "", domain.WrapError(domain.ErrTemplateNotFound, "resolve template", fmt.Errorf("invalid template name %q", name))
	}
	return filepath.Join(s.basePath, clean), nil
}
