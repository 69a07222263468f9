package main

// @title           MOODLE RAG CHAT API
// @version         1.0
// @description     API for the MOODLE RAG CHAT project

// @BasePath  /
// @schemes   http https

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pascalhuerten/moodle-rag/internal/adapters/driven/ai"
	"github.com/pascalhuerten/moodle-rag/internal/adapters/driven/moodle"
	"github.com/pascalhuerten/moodle-rag/internal/adapters/driven/postgres"
	redisadapter "github.com/pascalhuerten/moodle-rag/internal/adapters/driven/redis"
	"github.com/pascalhuerten/moodle-rag/internal/adapters/driven/vectorstore/local"
	"github.com/pascalhuerten/moodle-rag/internal/adapters/driving/http"
	"github.com/pascalhuerten/moodle-rag/internal/config"
	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driving"
	"github.com/pascalhuerten/moodle-rag/internal/core/services"
	"github.com/pascalhuerten/moodle-rag/internal/normalisers"
	"github.com/pascalhuerten/moodle-rag/internal/postprocessors"
	"github.com/pascalhuerten/moodle-rag/internal/runtime"

	_ "github.com/pascalhuerten/moodle-rag/docs"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line arg overrides RUN_MODE
	if len(os.Args) > 1 {
		cfg.RunMode = os.Args[1]
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	log.Printf("moodle-rag %s starting in %s mode", version, cfg.RunMode)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL (optional) =====
	var db *postgres.DB
	var runStore driven.IndexRunStore
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		db, err = postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		runStore = postgres.NewIndexRunStore(db)
		log.Println("PostgreSQL connected, index runs are persisted")
	}

	// ===== Distributed Lock (Redis if available, otherwise PostgreSQL advisory locks) =====
	var distributedLock driven.DistributedLock
	switch {
	case cfg.RedisURL != "":
		log.Println("Connecting to Redis...")
		redisClient, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis distributed lock")
	case db != nil:
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	default:
		log.Println("No lock backend configured, index rebuilds are not coordinated across instances")
	}

	// ===== AI services =====
	aiFactory := ai.NewFactory()

	baseEmbedder, err := aiFactory.CreateEmbeddingService(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	embedder, err := ai.NewCachedEmbedding(baseEmbedder, cfg.Index.QueryCacheSize)
	if err != nil {
		log.Fatalf("Failed to create query cache: %v", err)
	}
	defer embedder.Close()

	answerLLM, err := aiFactory.CreateLLMService(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create answer LLM: %v", err)
	}
	defer answerLLM.Close()

	miniLLM, err := aiFactory.CreateLLMService(&cfg.MiniLLM)
	if err != nil {
		log.Fatalf("Failed to create classifier LLM: %v", err)
	}
	defer miniLLM.Close()

	// ===== Moodle =====
	moodleClient, err := moodle.NewClient(moodle.Config{
		BaseURL:     cfg.Moodle.URL,
		Token:       cfg.Moodle.Token,
		RateLimit:   cfg.Moodle.RateLimit,
		Normalisers: normalisers.DefaultRegistry(),
		Logger:      slog.Default(),
	})
	if err != nil {
		log.Fatalf("Failed to create Moodle client: %v", err)
	}

	// Runtime configuration
	runtimeConfig := domain.NewRuntimeConfig(cfg.LockBackend(), cfg.Index.Dir)
	runtimeServices := runtime.NewServices(runtimeConfig)

	// Services (core business logic)
	scraper := services.NewScraper(services.ScraperConfig{
		Client:   moodleClient,
		FetchPDF: cfg.Moodle.FetchPDF,
		Logger:   slog.Default(),
	})
	indexBuilder := services.NewIndexBuilder(services.IndexBuilderConfig{
		Scraper:   scraper,
		Store:     local.NewStore(cfg.Index.Dir, slog.Default()),
		Embedder:  embedder,
		Pipeline:  postprocessors.DefaultPipeline(cfg.Index.MaxEmbedChars),
		Runs:      runStore,
		Services:  runtimeServices,
		Logger:    slog.Default(),
		BatchSize: cfg.Index.BatchSize,
		Lock:      distributedLock,
		LockTTL:   cfg.Index.LockTTL,
	})
	classifier := services.NewClassifier(services.ClassifierConfig{
		LLM:     miniLLM,
		Prompt:  cfg.Chat.ClassifierPrompt,
		Options: cfg.Chat.Classifier.Options(),
		Logger:  slog.Default(),
	})
	chatService := services.NewChatService(services.ChatServiceConfig{
		Classifier:   classifier,
		Embedder:     embedder,
		LLM:          answerLLM,
		Services:     runtimeServices,
		PlatformName: cfg.Chat.PlatformName,
		SystemPrompt: cfg.Chat.SystemPrompt,
		UserPrompt:   cfg.Chat.UserPrompt,
		Fallback:     cfg.Chat.Fallback,
		TopK:         cfg.Chat.TopK,
		Options:      cfg.Chat.Answer.Options(),
		Logger:       slog.Default(),
	})
	indexService := services.NewIndexService(runStore, runtimeServices)

	scheduler := services.NewScheduler(services.SchedulerConfig{
		Refresher: indexBuilder,
		Logger:    slog.Default(),
		Interval:  cfg.Index.RefreshInterval,
	})

	log.Printf("Runtime config: lock_backend=%s, index_dir=%s, refresh_interval=%s, embedding=%s/%s",
		runtimeConfig.LockBackend,
		runtimeConfig.IndexDir,
		cfg.Index.RefreshInterval,
		cfg.Embedding.Provider,
		embedder.Model())

	switch cfg.RunMode {
	case config.RunModeIndex:
		// One-shot: build or reopen, then exit
		runIndex(ctx, indexBuilder)

	case config.RunModeAPI:
		// API-only mode: load the index once, no refresh job
		if err := indexBuilder.Refresh(ctx); err != nil {
			log.Printf("Warning: index load failed: %v (chat answers 503 until restart)", err)
		}
		runAPI(ctx, cfg, chatService, indexService)

	case config.RunModeWorker:
		// Worker-only mode: refresh job, no HTTP server
		runWorkerMode(ctx, scheduler)

	case config.RunModeAll:
		// Combined mode: refresh job in background, API in foreground
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
		runAPI(ctx, cfg, chatService, indexService)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, chatService driving.ChatService, indexService driving.IndexService) {
	server := http.NewServer(http.Config{
		Host:           "0.0.0.0",
		Port:           cfg.Port,
		Version:        version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         slog.Default(),
	}, chatService, indexService)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

// runWorkerMode runs the daily refresh job until shutdown.
func runWorkerMode(ctx context.Context, scheduler *services.Scheduler) {
	log.Println("Starting worker mode...")

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	log.Println("Stopping scheduler...")
	scheduler.Stop()
	log.Println("Worker stopped")
}

// runIndex loads the index once and reports the run.
func runIndex(ctx context.Context, builder *services.IndexBuilder) {
	idx, run, err := builder.Load(ctx)
	if err != nil {
		log.Fatalf("Index load failed: %v", err)
	}
	defer idx.Close()

	log.Printf("Index %s: %d documents in %s", run.Mode, run.DocumentCount, run.Duration())
}
