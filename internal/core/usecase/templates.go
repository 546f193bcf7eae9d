package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/placeholder"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

// TemplateUseCase reads and edits the prompt templates. Saved text is stored
// exactly as given once it parses.
type TemplateUseCase struct {
	store   ports.TemplateStore
	allowed map[string]struct{}
}

func NewTemplateUseCase(store ports.TemplateStore, names ...string) *TemplateUseCase {
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}
	return &TemplateUseCase{store: store, allowed: allowed}
}

func (uc *TemplateUseCase) LoadTemplate(ctx context.Context, name string) (string, error) {
	if err := uc.checkName(name); err != nil {
		return "", err
	}
	return uc.store.Load(ctx, name)
}

func (uc *TemplateUseCase) SaveTemplate(ctx context.Context, name, content string) error {
	if err := uc.checkName(name); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return domain.NewValidationError("save template", "Template content is empty")
	}
	if _, err := placeholder.Parse(content); err != nil {
		return fmt.Errorf("save template %s: %w", name, err)
	}
	return uc.store.Save(ctx, name, content)
}

func (uc *TemplateUseCase) checkName(name string) error {
	if len(uc.allowed) == 0 {
		return nil
	}
	if _, ok := uc.allowed[name]; !ok {
		return domain.WrapError(domain.ErrTemplateNotFound, "template", fmt.Errorf("unknown template %q", name))
	}
	return nil
}
