package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/placeholder"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

const (
	examplesInPrompt  = 2
	maxExampleRunes   = 1000
	exampleTruncation = "..."
)

type ComposeOptions struct {
	TemplateName      string
	SimilarityResults int
	MaxPromptLength   int
	Target            domain.GenerationTarget
}

type ComposePromptUseCase struct {
	store      ports.PostStore
	ranker     *Ranker
	analyzer   *StyleAnalyzer
	templates  ports.TemplateStore
	dispatcher ports.GenerationDispatcher
	opts       ComposeOptions
}

func NewComposePromptUseCase(
	store ports.PostStore,
	ranker *Ranker,
	analyzer *StyleAnalyzer,
	templates ports.TemplateStore,
	dispatcher ports.GenerationDispatcher,
	opts ComposeOptions,
) *ComposePromptUseCase {
	return &ComposePromptUseCase{
		store:      store,
		ranker:     ranker,
		analyzer:   analyzer,
		templates:  templates,
		dispatcher: dispatcher,
		opts:       opts,
	}
}

func (uc *ComposePromptUseCase) Compose(ctx context.Context, fields domain.ProductFields) (*domain.Composition, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	fields = fields.WithDefaults()

	count, err := uc.store.Count(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrConnectivity) {
			return nil, fmt.Errorf("count posts: %w", err)
		}
		return nil, domain.WrapError(domain.ErrConnectivity, "count posts", err)
	}
	if count == 0 {
		return nil, domain.WrapError(domain.ErrEmptyKnowledgeBase, "compose prompt", fmt.Errorf("collection has no posts"))
	}

	examples := uc.ranker.Rank(ctx, fields.RetrievalQuery(), uc.opts.SimilarityResults)
	if len(examples) == 0 {
		return nil, domain.WrapError(domain.ErrNoMatch, "compose prompt", fmt.Errorf("0 results for %d posts", count))
	}

	analysis := uc.analyzer.Analyze(ctx, examples)

	compCtx := domain.CompositionContext{
		Product:       fields,
		BrandAnalysis: analysis,
		PostExamples:  formatExamples(examples),
	}

	raw, err := uc.templates.Load(ctx, uc.opts.TemplateName)
	if err != nil {
		return nil, fmt.Errorf("load generation template: %w", err)
	}
	tpl, err := placeholder.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse generation template: %w", err)
	}
	if err := tpl.Validate(compCtx); err != nil {
		return nil, fmt.Errorf("validate generation template: %w", err)
	}
	instruction, err := tpl.Render(compCtx)
	if err != nil {
		return nil, fmt.Errorf("render generation template: %w", err)
	}
	if uc.opts.MaxPromptLength > 0 {
		instruction = domain.TruncateRunes(instruction, uc.opts.MaxPromptLength)
	}

	prompt, err := uc.dispatcher.Generate(ctx, uc.opts.Target.Backend, uc.opts.Target.Request(instruction))
	if err != nil {
		return nil, fmt.Errorf("compose prompt: %w", err)
	}

	return &domain.Composition{
		Prompt:              prompt,
		BrandAnalysis:       analysis,
		Examples:            examples,
		RenderedInstruction: instruction,
	}, nil
}

// formatExamples labels the first examples and cuts each to a bounded length.
func formatExamples(results []domain.RetrievalResult) string {
	n := min(len(results), examplesInPrompt)
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text := domain.TruncateRunes(results[i].Text, maxExampleRunes) + exampleTruncation
		parts = append(parts, fmt.Sprintf("EXAMPLE %d:\n%s", i+1, text))
	}
	return strings.Join(parts, "\n")
}
