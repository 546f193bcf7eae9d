package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/placeholder"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

const (
	NoPostsForAnalysis  = "No post available for analysis"
	postSeparator       = "\n\n---POST SEPARATOR---\n\n"
	maxAnalysisRunes    = 3000
	analysisFailureText = domain.FailureMarker + " Error in brand voice analysis: "
)

// StyleAnalyzer asks a model to describe the brand voice of retrieved posts.
type StyleAnalyzer struct {
	templates    ports.TemplateStore
	dispatcher   ports.GenerationDispatcher
	templateName string
	target       domain.GenerationTarget
}

func NewStyleAnalyzer(
	templates ports.TemplateStore,
	dispatcher ports.GenerationDispatcher,
	templateName string,
	target domain.GenerationTarget,
) *StyleAnalyzer {
	return &StyleAnalyzer{
		templates:    templates,
		dispatcher:   dispatcher,
		templateName: templateName,
		target:       target,
	}
}

// Analyze returns failures as marker-prefixed text instead of an error.
func (a *StyleAnalyzer) Analyze(ctx context.Context, posts []domain.RetrievalResult) string {
	if len(posts) == 0 {
		return NoPostsForAnalysis
	}

	texts := make([]string, 0, len(posts))
	for _, p := range posts {
		texts = append(texts, p.Text)
	}
	combined := domain.TruncateRunes(strings.Join(texts, postSeparator), maxAnalysisRunes)

	raw, err := a.templates.Load(ctx, a.templateName)
	if err != nil {
		return a.failure(err)
	}
	prompt, err := placeholder.Render(raw, domain.AnalysisContext{CombinedText: combined})
	if err != nil {
		return a.failure(err)
	}

	analysis, err := a.dispatcher.Generate(ctx, a.target.Backend, a.target.Request(prompt))
	if err != nil {
		return a.failure(err)
	}
	return analysis
}

func (a *StyleAnalyzer) failure(err error) string {
	slog.Warn("brand_voice_analysis_failed", "backend", a.target.Backend, "error", err)
	return analysisFailureText + err.Error()
}
