package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/brandvoice-promptgen/internal/config"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/usecase"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/llm/dispatch"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/llm/perplexity"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/queue/nats"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/resilience"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/vector/memory"
	"github.com/kirillkom/brandvoice-promptgen/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/brandvoice-promptgen/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	Store      ports.PostStore
	Collection domain.Collection

	IngestUC    ports.PostIngestor
	ReaderUC    ports.PostReader
	ComposeUC   ports.PromptComposer
	GeneratorUC ports.PostGenerator
	TemplatesUC ports.TemplateEditor
	Decoder     ports.UploadDecoder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	m := metrics.New("promptgen-api")

	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.BreakerEnabled = cfg.BreakerEnabled
	executor := resilience.NewExecutor(resilienceCfg)

	ollamaClient := ollama.New(cfg.OllamaHost, cfg.GenerationTimeout, executor)
	embedder := ollama.NewEmbedder(ollamaClient, cfg.EmbeddingModel)

	dispatcher := dispatch.New(m)
	dispatcher.Register(domain.BackendOllama, ollama.NewGenerator(ollamaClient))
	if strings.TrimSpace(cfg.PerplexityAPIKey) != "" {
		pplx := perplexity.New(cfg.PerplexityURL, cfg.PerplexityAPIKey, cfg.ComposeTimeout, executor)
		dispatcher.Register(domain.BackendPerplexity, pplx)
	}

	store, err := newPostStore(cfg, embedder)
	if err != nil {
		return nil, err
	}
	collection, err := store.EnsureCollection(ctx)
	if err != nil {
		// The collection is created lazily on the next request once the backend is up.
		slog.Warn("collection_init_deferred", "collection", cfg.CollectionName, "error", err)
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var catalog ports.PostCatalog
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		db, repo, err := openCatalog(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		catalog = repo
	}

	var events ports.EventPublisher
	if strings.TrimSpace(cfg.NATSURL) != "" {
		publisher, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		closers = append(closers, publisher.Close)
		events = publisher
	}

	templateStore, err := localfs.NewTemplateStore(cfg.TemplatesPath)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init template store: %w", err)
	}

	ranker := usecase.NewRanker(store, cfg.SimilarityResults)
	analyzer := usecase.NewStyleAnalyzer(templateStore, dispatcher, cfg.AnalysisPromptFile, domain.GenerationTarget{
		Backend:     domain.BackendID(cfg.AnalysisBackend),
		Model:       cfg.AnalysisModel,
		Temperature: domain.Temperature(cfg.AnalysisTemperature),
		Timeout:     cfg.GenerationTimeout,
	})
	composeUC := usecase.NewComposePromptUseCase(store, ranker, analyzer, templateStore, dispatcher, usecase.ComposeOptions{
		TemplateName:      cfg.GenerationPromptFile,
		SimilarityResults: cfg.SimilarityResults,
		MaxPromptLength:   cfg.MaxPromptLength,
		Target: domain.GenerationTarget{
			Backend:     domain.BackendID(cfg.ComposeBackend),
			Model:       cfg.ComposeModel,
			Temperature: domain.Temperature(cfg.GenerationTemperature),
			MaxTokens:   cfg.ComposeMaxTokens,
			Timeout:     cfg.ComposeTimeout,
		},
	})
	generatorUC := usecase.NewGeneratePostUseCase(dispatcher, domain.GenerationTarget{
		Backend:     domain.BackendID(cfg.PostBackend),
		Model:       cfg.PostModel,
		Temperature: domain.Temperature(cfg.PostTemperature),
		Timeout:     cfg.GenerationTimeout,
	})

	return &App{
		Config:     cfg,
		Metrics:    m,
		Store:      store,
		Collection: collection,

		IngestUC:    usecase.NewIngestPostUseCase(store, catalog, events, cfg.MinPostLength),
		ReaderUC:    usecase.NewPostReaderUseCase(store, catalog, ranker),
		ComposeUC:   composeUC,
		GeneratorUC: generatorUC,
		TemplatesUC: usecase.NewTemplateUseCase(templateStore, cfg.AnalysisPromptFile, cfg.GenerationPromptFile),
		Decoder:     plaintext.NewDecoder(),

		closeFn: closeAll,
	}, nil
}

func newPostStore(cfg config.Config, embedder ports.Embedder) (ports.PostStore, error) {
	switch cfg.VectorBackend {
	case "memory":
		return memory.New(cfg.CollectionName, embedder), nil
	case "qdrant":
		return qdrant.New(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.CollectionName, embedder), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend %q", cfg.VectorBackend)
	}
}

func openCatalog(ctx context.Context, dsn string) (*sql.DB, *postgres.PostRepository, error) {
	db, err := postgres.OpenDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewPostRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, repo, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
