package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher loads a new index handle and makes it live.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler refreshes the vector index periodically.
// It runs once on start and then on every tick.
//
// Every instance runs its own scheduler so each one holds a live handle.
// Build coordination across instances belongs to the Refresher.
type Scheduler struct {
	refresher Refresher
	logger    *slog.Logger

	// Internal state
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	interval time.Duration
	lastErr  error
	lastRun  time.Time
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Refresher Refresher
	Logger    *slog.Logger
	Interval  time.Duration // How often to refresh the index (default: 24h)
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = 24 * time.Hour
	}

	return &Scheduler{
		refresher: cfg.Refresher,
		logger:    logger,
		interval:  interval,
	}
}

// Start begins the scheduler loop.
// It runs until Stop is called or context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	s.stopCh = stopCh
	s.doneCh = doneCh
	s.mu.Unlock()

	s.logger.Info("scheduler starting", "interval", s.interval)

	go s.run(ctx, stopCh, doneCh)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	// Wait for the scheduler to finish
	<-doneCh

	s.logger.Info("scheduler stopped")
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// LastResult returns when the last refresh attempt finished and its error.
func (s *Scheduler) LastResult() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastErr
}

// run is the main scheduler loop.
// It clears the running flag on exit, so a cancelled context allows a later Start.
func (s *Scheduler) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	_ = s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			_ = s.refresh(ctx)
		}
	}
}

// refresh runs one index refresh and records its outcome.
// A failed refresh leaves the previous handle live.
func (s *Scheduler) refresh(ctx context.Context) error {
	start := time.Now()
	err := s.refresher.Refresh(ctx)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("index refresh failed", "error", err)
		return err
	}
	s.logger.Info("index refreshed", "duration", time.Since(start))
	return nil
}

// TriggerNow runs a refresh synchronously, outside the ticker, and returns its error.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.refresh(ctx)
}
