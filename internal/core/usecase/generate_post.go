package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

// GeneratePostUseCase sends a composed prompt to the post-writing model.
type GeneratePostUseCase struct {
	dispatcher ports.GenerationDispatcher
	target     domain.GenerationTarget
}

func NewGeneratePostUseCase(dispatcher ports.GenerationDispatcher, target domain.GenerationTarget) *GeneratePostUseCase {
	return &GeneratePostUseCase{dispatcher: dispatcher, target: target}
}

func (uc *GeneratePostUseCase) GeneratePost(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.NewValidationError("generate post", "No prompt available - Generate a prompt first")
	}
	post, err := uc.dispatcher.Generate(ctx, uc.target.Backend, uc.target.Request(prompt))
	if err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	return post, nil
}
