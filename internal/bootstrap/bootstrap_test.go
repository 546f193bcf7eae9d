package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/brandvoice-promptgen/internal/config"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// fakeOllama answers embed requests with a two-dimensional vector derived from
// the text and generate requests with a fixed completion.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embed":
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			out := make([][]float32, len(req.Input))
			for i, text := range req.Input {
				out[i] = []float32{float32(strings.Count(text, "rose")) + 0.1, float32(strings.Count(text, "oud")) + 0.1}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": out})
		case "/api/generate":
			_ = json.NewEncoder(w).Encode(map[string]any{"response": "generated text", "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(t *testing.T, ollamaURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"analysis_prompt.txt":   "Describe the voice:\n{combined_text}",
		"generation_prompt.txt": "Write for {product_name} by {perfumer_name}. Values {brand_values}. {product_description} {olfactory_pyramid} [{keywords}] {destination}\n{brand_analysis}\n{post_examples}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}
	return config.Config{
		OllamaHost:            ollamaURL,
		EmbeddingModel:        "nomic-embed-text",
		AnalysisModel:         "llama3:instruct",
		PostModel:             "llama3:instruct",
		VectorBackend:         "memory",
		CollectionName:        "brand_posts",
		TemplatesPath:         dir,
		AnalysisPromptFile:    "analysis_prompt.txt",
		GenerationPromptFile:  "generation_prompt.txt",
		AnalysisBackend:       "ollama",
		ComposeBackend:        "ollama",
		ComposeModel:          "llama3:instruct",
		PostBackend:           "ollama",
		SimilarityResults:     3,
		AnalysisTemperature:   0.3,
		GenerationTemperature: 0.4,
		PostTemperature:       0.3,
		ComposeTimeout:        5 * time.Second,
		GenerationTimeout:     5 * time.Second,
		MaxPromptLength:       8000,
	}
}

func TestNewWiresMemoryPipelineEndToEnd(t *testing.T) {
	server := fakeOllama(t)
	defer server.Close()

	app, err := New(context.Background(), testConfig(t, server.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Collection.Location != "memory://brand_posts" {
		t.Fatalf("unexpected collection location %q", app.Collection.Location)
	}

	ctx := context.Background()
	if _, err := app.IngestUC.AddPost(ctx, "# Sunset Bloom\n## Description\nA warm rose.\n## TAGS\n#luxury", "sunset"); err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	composition, err := app.ComposeUC.Compose(ctx, domain.ProductFields{
		ProductName:        "Rose Oud",
		BrandValues:        "craft",
		ProductDescription: "rose and oud",
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if composition.Prompt != "generated text" {
		t.Fatalf("unexpected prompt %q", composition.Prompt)
	}
	if !strings.Contains(composition.RenderedInstruction, "by Not specified") {
		t.Fatalf("expected default perfumer in %q", composition.RenderedInstruction)
	}
	if len(composition.Examples) != 1 {
		t.Fatalf("expected one example, got %d", len(composition.Examples))
	}

	stats, err := app.ReaderUC.Stats(ctx)
	if err != nil || stats.Count != 1 {
		t.Fatalf("expected one stored post, got %+v err=%v", stats, err)
	}
}

func TestNewRejectsUnknownVectorBackend(t *testing.T) {
	cfg := testConfig(t, "http://localhost:1")
	cfg.VectorBackend = "chroma"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unsupported vector backend")
	}
}
