package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
	"github.com/pascalhuerten/moodle-rag/internal/runtime"
)

// defaultEmbedBatchSize is how many documents are sent per Embed call
const defaultEmbedBatchSize = 32

// indexLockName is the distributed lock guarding index builds
const indexLockName = "index-rebuild"

// defaultLockPoll is how often an instance waiting on another instance's
// build checks for the published directory
const defaultLockPoll = 5 * time.Second

// IndexBuilder builds or reopens the persisted vector index.
type IndexBuilder struct {
	scraper   *Scraper
	store     driven.VectorIndexStore
	embedder  driven.EmbeddingService
	pipeline  driven.TextPipeline
	runs      driven.IndexRunStore
	services  *runtime.Services
	logger    *slog.Logger
	batchSize int

	// Build coordination across instances
	lock     driven.DistributedLock
	lockTTL  time.Duration
	lockPoll time.Duration

	// serialises Load within this process
	mu sync.Mutex
}

// IndexBuilderConfig holds configuration for the index builder.
type IndexBuilderConfig struct {
	Scraper   *Scraper
	Store     driven.VectorIndexStore
	Embedder  driven.EmbeddingService
	Pipeline  driven.TextPipeline  // Optional: prepares text before embedding
	Runs      driven.IndexRunStore // Optional: run history
	Services  *runtime.Services
	Logger    *slog.Logger
	BatchSize int // Documents per embedding call (default: 32)

	// Optional: serialises builds across instances sharing one index directory.
	// Instances that lose the lock wait for the directory and reopen it.
	Lock     driven.DistributedLock
	LockTTL  time.Duration // TTL for the build lock (default: 1h)
	LockPoll time.Duration // How often a waiting instance rechecks (default: 5s)
}

// NewIndexBuilder creates a new index builder.
func NewIndexBuilder(cfg IndexBuilderConfig) *IndexBuilder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = time.Hour // a full scrape and embed of a large site
	}
	lockPoll := cfg.LockPoll
	if lockPoll <= 0 {
		lockPoll = defaultLockPoll
	}
	return &IndexBuilder{
		scraper:   cfg.Scraper,
		store:     cfg.Store,
		embedder:  cfg.Embedder,
		pipeline:  cfg.Pipeline,
		runs:      cfg.Runs,
		services:  cfg.Services,
		logger:    logger,
		batchSize: batchSize,
		lock:      cfg.Lock,
		lockTTL:   lockTTL,
		lockPoll:  lockPoll,
	}
}

// Load reopens the persisted index if present, otherwise scrapes and builds it.
// With a lock configured only the lock holder builds; other instances wait
// until the directory is published and reopen it.
// Every call is recorded as an index run.
func (b *IndexBuilder) Load(ctx context.Context) (driven.VectorIndex, *domain.IndexRun, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exists, err := b.store.Exists()
	if err != nil {
		return nil, nil, fmt.Errorf("check index directory: %w", err)
	}
	if exists {
		return b.reopen(ctx)
	}
	if b.lock == nil {
		return b.build(ctx)
	}

	for {
		acquired, err := b.lock.Acquire(ctx, indexLockName, b.lockTTL)
		if err != nil {
			// Create publishes by rename, a concurrent build fails instead of overwriting
			b.logger.Warn("index lock unavailable, building without it", "error", err)
			return b.build(ctx)
		}
		if acquired {
			return b.buildLocked(ctx)
		}

		b.logger.Debug("index build running on another instance, waiting", "poll", b.lockPoll)
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("wait for index build: %w", ctx.Err())
		case <-time.After(b.lockPoll):
		}

		exists, err := b.store.Exists()
		if err != nil {
			return nil, nil, fmt.Errorf("check index directory: %w", err)
		}
		if exists {
			return b.reopen(ctx)
		}
	}
}

// buildLocked runs while holding the build lock. The directory is checked
// again because the previous holder may have published it meanwhile.
func (b *IndexBuilder) buildLocked(ctx context.Context) (driven.VectorIndex, *domain.IndexRun, error) {
	defer func() {
		if err := b.lock.Release(context.WithoutCancel(ctx), indexLockName); err != nil {
			b.logger.Warn("failed to release index lock", "error", err)
		}
	}()

	exists, err := b.store.Exists()
	if err != nil {
		return nil, nil, fmt.Errorf("check index directory: %w", err)
	}
	if exists {
		return b.reopen(ctx)
	}
	return b.build(ctx)
}

func (b *IndexBuilder) reopen(ctx context.Context) (driven.VectorIndex, *domain.IndexRun, error) {
	run := b.startRun(ctx, domain.IndexRunModeReopened)
	idx, err := b.Open(ctx)
	return b.finishRun(ctx, run, idx, err)
}

func (b *IndexBuilder) build(ctx context.Context) (driven.VectorIndex, *domain.IndexRun, error) {
	run := b.startRun(ctx, domain.IndexRunModeBuilt)
	idx, err := b.Build(ctx)
	return b.finishRun(ctx, run, idx, err)
}

// Build scrapes the site, embeds every node of the tree and persists a new index.
func (b *IndexBuilder) Build(ctx context.Context) (driven.VectorIndex, error) {
	start := time.Now()

	b.logger.Info("scraping moodle data")
	site, err := b.scraper.Scrape(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	docs := domain.ToDocuments(site)
	b.logger.Info("embedding documents", "documents", len(docs), "model", b.embedder.Model())
	if err := b.embed(ctx, docs); err != nil {
		return nil, err
	}

	idx, err := b.store.Create(ctx, docs, b.embedder.Model())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	b.logger.Info("vector index built",
		"documents", idx.Count(),
		"duration", time.Since(start),
	)
	return idx, nil
}

// Open reopens the persisted index without scraping.
func (b *IndexBuilder) Open(ctx context.Context) (driven.VectorIndex, error) {
	idx, err := b.store.Open(ctx, b.embedder.Model())
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	b.logger.Info("vector index reopened", "documents", idx.Count())
	return idx, nil
}

// Refresh loads an index and swaps it in as the live handle.
// On failure the previous handle stays live.
func (b *IndexBuilder) Refresh(ctx context.Context) error {
	idx, _, err := b.Load(ctx)
	if err != nil {
		return err
	}
	b.services.SetIndex(idx)
	return nil
}

// embed fills the Embedding field of every document in batches.
// Document content is stored as rendered, the pipeline only shapes the embedding input.
func (b *IndexBuilder) embed(ctx context.Context, docs []*domain.Document) error {
	for start := 0; start < len(docs); start += b.batchSize {
		end := min(start+b.batchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Content
			if b.pipeline != nil {
				texts[i] = b.pipeline.Process(d.Content)
			}
		}

		vectors, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed documents %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embed documents %d-%d: got %d vectors for %d texts", start, end, len(vectors), len(batch))
		}
		for i, d := range batch {
			d.Embedding = vectors[i]
		}
	}
	return nil
}

func (b *IndexBuilder) startRun(ctx context.Context, mode domain.IndexRunMode) *domain.IndexRun {
	run := domain.NewIndexRun(mode)
	b.saveRun(ctx, run)
	return run
}

func (b *IndexBuilder) finishRun(ctx context.Context, run *domain.IndexRun, idx driven.VectorIndex, err error) (driven.VectorIndex, *domain.IndexRun, error) {
	if err != nil {
		run.Fail(err)
		b.logger.Error("index run failed", "run_id", run.ID, "mode", run.Mode, "error", err)
	} else {
		run.Complete(idx.Count())
	}
	b.saveRun(ctx, run)
	if b.services != nil {
		b.services.Config().RecordRun(run)
	}
	return idx, run, err
}

func (b *IndexBuilder) saveRun(ctx context.Context, run *domain.IndexRun) {
	if b.runs == nil {
		return
	}
	if err := b.runs.Save(ctx, run); err != nil {
		b.logger.Warn("failed to save index run", "run_id", run.ID, "error", err)
	}
}
