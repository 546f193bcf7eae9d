package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROMPTGEN_CONFIG", "")
	t.Setenv("COMPOSE_BACKEND", "")
	t.Setenv("COMPOSE_MODEL", "")
	t.Setenv("SIMILARITY_RESULTS", "")
	t.Setenv("MAX_PROMPT_LENGTH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SimilarityResults != 3 {
		t.Fatalf("expected default similarity results 3, got %d", cfg.SimilarityResults)
	}
	if cfg.MaxPromptLength != 8000 {
		t.Fatalf("expected default max prompt length 8000, got %d", cfg.MaxPromptLength)
	}
	if cfg.ComposeBackend != "perplexity" || cfg.ComposeModel != "sonar" {
		t.Fatalf("expected perplexity/sonar composition, got %s/%s", cfg.ComposeBackend, cfg.ComposeModel)
	}
	if cfg.AnalysisTemperature != 0.3 {
		t.Fatalf("expected analysis temperature 0.3, got %v", cfg.AnalysisTemperature)
	}
	if cfg.ComposeTimeout != 300*time.Second {
		t.Fatalf("expected 300s compose timeout, got %v", cfg.ComposeTimeout)
	}
}

func TestLoadEnvOverridesYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptgen.yaml")
	overlay := "OLLAMA_HOST: http://gpu-box:11434\nsimilarity_results: 5\nCOMPOSE_BACKEND: ollama\nBREAKER_ENABLED: false\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("PROMPTGEN_CONFIG", path)
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("SIMILARITY_RESULTS", "7")
	t.Setenv("COMPOSE_BACKEND", "")
	t.Setenv("COMPOSE_MODEL", "")
	t.Setenv("ANALYSIS_MODEL", "")
	t.Setenv("BREAKER_ENABLED", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OllamaHost != "http://gpu-box:11434" {
		t.Fatalf("expected overlay host, got %q", cfg.OllamaHost)
	}
	if cfg.SimilarityResults != 7 {
		t.Fatalf("expected env to win over overlay, got %d", cfg.SimilarityResults)
	}
	if cfg.ComposeBackend != "ollama" || cfg.ComposeModel != cfg.AnalysisModel {
		t.Fatalf("expected ollama composition on the analysis model, got %s/%s", cfg.ComposeBackend, cfg.ComposeModel)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled from overlay")
	}
}

func TestLoadRejectsBrokenOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	_ = os.WriteFile(path, []byte("OLLAMA_HOST: [unterminated"), 0o644)
	t.Setenv("PROMPTGEN_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateReportsAllIssues(t *testing.T) {
	cfg := Config{
		OllamaHost:           "ollama:11434",
		EmbeddingModel:       "",
		AnalysisModel:        "llama3",
		CollectionName:       "posts",
		AnalysisPromptFile:   "a.txt",
		GenerationPromptFile: "g.txt",
		VectorBackend:        "chroma",
		AnalysisBackend:      "ollama",
		ComposeBackend:       "perplexity",
		PostBackend:          "ollama",
		SimilarityResults:    3,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"EMBEDDING_MODEL", "OLLAMA_HOST", "VECTOR_BACKEND", "PERPLEXITY_API_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	cfg.OllamaHost = "http://ollama:11434"
	cfg.EmbeddingModel = "nomic-embed-text"
	cfg.VectorBackend = "memory"
	cfg.PerplexityAPIKey = "pplx"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.Summary()["perplexity_key"] != "***" {
		t.Fatalf("expected masked key in summary")
	}
}

func TestValidateBackendIssuesAreOrdered(t *testing.T) {
	cfg := Config{
		OllamaHost:           "http://localhost:11434",
		EmbeddingModel:       "nomic-embed-text",
		AnalysisModel:        "llama3",
		CollectionName:       "posts",
		AnalysisPromptFile:   "a.txt",
		GenerationPromptFile: "g.txt",
		VectorBackend:        "memory",
		AnalysisBackend:      "openai",
		ComposeBackend:       "perplexity",
		PostBackend:          "mistral",
		SimilarityResults:    3,
	}
	want := "unsupported ANALYSIS_BACKEND \"openai\"\n" +
		"COMPOSE_BACKEND=perplexity requires PERPLEXITY_API_KEY\n" +
		"unsupported POST_BACKEND \"mistral\""
	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		if err == nil || err.Error() != want {
			t.Fatalf("run %d: expected stable issue order\n%q\ngot\n%v", i, want, err)
		}
	}
}
