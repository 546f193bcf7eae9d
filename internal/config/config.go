package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	OllamaHost     string
	EmbeddingModel string
	AnalysisModel  string
	PostModel      string

	VectorBackend  string
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string

	TemplatesPath        string
	AnalysisPromptFile   string
	GenerationPromptFile string

	PerplexityURL    string
	PerplexityAPIKey string
	PerplexityModel  string

	AnalysisBackend string
	ComposeBackend  string
	ComposeModel    string
	PostBackend     string

	SimilarityResults     int
	AnalysisTemperature   float64
	GenerationTemperature float64
	PostTemperature       float64
	ComposeMaxTokens      int
	ComposeTimeout        time.Duration
	GenerationTimeout     time.Duration

	MinPostLength   int
	MaxPromptLength int

	PostgresDSN string

	NATSURL     string
	NATSSubject string

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxInFlight    int

	BreakerEnabled bool
}

// Load reads configuration from the environment. When PROMPTGEN_CONFIG names a
// YAML file, its keys (same names as the env vars) become the fallbacks.
func Load() (Config, error) {
	src := source{}
	if path := strings.TrimSpace(os.Getenv("PROMPTGEN_CONFIG")); path != "" {
		overlay, err := readOverlay(path)
		if err != nil {
			return Config{}, err
		}
		src.overlay = overlay
	}

	cfg := Config{
		APIPort:  src.str("API_PORT", "8080"),
		LogLevel: src.str("LOG_LEVEL", "info"),

		OllamaHost:     src.str("OLLAMA_HOST", "http://localhost:11434"),
		EmbeddingModel: src.str("EMBEDDING_MODEL", "nomic-embed-text"),
		AnalysisModel:  src.str("ANALYSIS_MODEL", "llama3:instruct"),
		PostModel:      src.str("POST_MODEL", "llama3:instruct"),

		VectorBackend:  src.str("VECTOR_BACKEND", "qdrant"),
		QdrantURL:      src.str("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:   src.str("QDRANT_API_KEY", ""),
		CollectionName: src.str("COLLECTION_NAME", "brand_posts"),

		TemplatesPath:        src.str("TEMPLATES_PATH", "./templates"),
		AnalysisPromptFile:   src.str("ANALYSIS_PROMPT_FILE", "analysis_prompt.txt"),
		GenerationPromptFile: src.str("GENERATION_PROMPT_FILE", "generation_prompt.txt"),

		PerplexityURL:    src.str("PERPLEXITY_URL", "https://api.perplexity.ai"),
		PerplexityAPIKey: src.str("PERPLEXITY_API_KEY", ""),
		PerplexityModel:  src.str("PERPLEXITY_MODEL", "sonar"),

		AnalysisBackend: src.str("ANALYSIS_BACKEND", "ollama"),
		ComposeBackend:  src.str("COMPOSE_BACKEND", "perplexity"),
		ComposeModel:    src.str("COMPOSE_MODEL", ""),
		PostBackend:     src.str("POST_BACKEND", "ollama"),

		SimilarityResults:     src.integer("SIMILARITY_RESULTS", 3),
		AnalysisTemperature:   src.float("ANALYSIS_TEMPERATURE", 0.3),
		GenerationTemperature: src.float("GENERATION_TEMPERATURE", 0.4),
		PostTemperature:       src.float("POST_TEMPERATURE", 0.3),
		ComposeMaxTokens:      src.integer("COMPOSE_MAX_TOKENS", 2000),
		ComposeTimeout:        time.Duration(src.integer("COMPOSE_TIMEOUT_SECONDS", 300)) * time.Second,
		GenerationTimeout:     time.Duration(src.integer("GENERATION_TIMEOUT_SECONDS", 300)) * time.Second,

		MinPostLength:   src.integer("MIN_POST_LENGTH", 100),
		MaxPromptLength: src.integer("MAX_PROMPT_LENGTH", 8000),

		PostgresDSN: src.str("POSTGRES_DSN", ""),

		NATSURL:     src.str("NATS_URL", ""),
		NATSSubject: src.str("NATS_SUBJECT", "posts.ingested"),

		APIRateLimitRPS:   src.float("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst: src.integer("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:    src.integer("API_MAX_IN_FLIGHT", 16),

		BreakerEnabled: src.boolean("BREAKER_ENABLED", true),
	}
	if cfg.ComposeModel == "" {
		cfg.ComposeModel = cfg.defaultComposeModel()
	}
	return cfg, nil
}

func (c Config) defaultComposeModel() string {
	if c.ComposeBackend == "perplexity" {
		return c.PerplexityModel
	}
	return c.AnalysisModel
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var issues []error

	if strings.TrimSpace(c.EmbeddingModel) == "" {
		issues = append(issues, errors.New("EMBEDDING_MODEL is empty"))
	}
	if strings.TrimSpace(c.AnalysisModel) == "" {
		issues = append(issues, errors.New("ANALYSIS_MODEL is empty"))
	}
	if strings.TrimSpace(c.CollectionName) == "" {
		issues = append(issues, errors.New("COLLECTION_NAME is empty"))
	}
	if !strings.HasPrefix(c.OllamaHost, "http://") && !strings.HasPrefix(c.OllamaHost, "https://") {
		issues = append(issues, fmt.Errorf("invalid OLLAMA_HOST %q: expected http:// or https://", c.OllamaHost))
	}
	if strings.TrimSpace(c.AnalysisPromptFile) == "" || strings.TrimSpace(c.GenerationPromptFile) == "" {
		issues = append(issues, errors.New("prompt template file names must not be empty"))
	}
	switch c.VectorBackend {
	case "qdrant", "memory":
	default:
		issues = append(issues, fmt.Errorf("unsupported VECTOR_BACKEND %q", c.VectorBackend))
	}
	for _, site := range []struct{ key, backend string }{
		{"ANALYSIS_BACKEND", c.AnalysisBackend},
		{"COMPOSE_BACKEND", c.ComposeBackend},
		{"POST_BACKEND", c.PostBackend},
	} {
		key, backend := site.key, site.backend
		switch backend {
		case "ollama":
		case "perplexity":
			if strings.TrimSpace(c.PerplexityAPIKey) == "" {
				issues = append(issues, fmt.Errorf("%s=perplexity requires PERPLEXITY_API_KEY", key))
			}
		default:
			issues = append(issues, fmt.Errorf("unsupported %s %q", key, backend))
		}
	}
	if c.SimilarityResults <= 0 {
		issues = append(issues, errors.New("SIMILARITY_RESULTS must be positive"))
	}

	return errors.Join(issues...)
}

// Summary lists the effective settings for the startup log. Secrets are masked.
func (c Config) Summary() map[string]any {
	return map[string]any{
		"ollama_host":        c.OllamaHost,
		"analysis_model":     c.AnalysisModel,
		"embedding_model":    c.EmbeddingModel,
		"post_model":         c.PostModel,
		"vector_backend":     c.VectorBackend,
		"collection":         c.CollectionName,
		"templates_path":     c.TemplatesPath,
		"analysis_backend":   c.AnalysisBackend,
		"compose_backend":    c.ComposeBackend,
		"compose_model":      c.ComposeModel,
		"post_backend":       c.PostBackend,
		"perplexity_key":     mask(c.PerplexityAPIKey),
		"catalog_enabled":    c.PostgresDSN != "",
		"events_enabled":     c.NATSURL != "",
		"api_port":           c.APIPort,
		"similarity_results": c.SimilarityResults,
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

func readOverlay(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

// source resolves a key from the environment, then the YAML overlay.
type source struct {
	overlay map[string]string
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.overlay[key]
}

func (s source) str(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) integer(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) float(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func (s source) boolean(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
