package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven/mocks"
)

// mockRefresher counts refreshes and can be made to fail
type mockRefresher struct {
	mu        sync.Mutex
	calls     int
	refreshFn func() error
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	fn := m.refreshFn
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil
}

func (m *mockRefresher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewScheduler(t *testing.T) {
	s := NewScheduler(SchedulerConfig{
		Refresher: &mockRefresher{},
		Interval:  time.Minute,
	})

	if s == nil {
		t.Fatal("expected non-nil scheduler")
	}
	if s.interval != time.Minute {
		t.Errorf("expected interval 1m, got %v", s.interval)
	}
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Refresher: &mockRefresher{}})

	if s.interval != 24*time.Hour {
		t.Errorf("expected default interval 24h, got %v", s.interval)
	}
	if s.logger == nil {
		t.Error("expected default logger")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(SchedulerConfig{
		Refresher: &mockRefresher{},
		Interval:  100 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("failed to start scheduler: %v", err)
	}
	if !s.Running() {
		t.Error("expected scheduler to be running")
	}

	// Start again should be no-op
	if err := s.Start(ctx); err != nil {
		t.Errorf("second start should not error: %v", err)
	}

	s.Stop()
	if s.Running() {
		t.Error("expected scheduler to be stopped")
	}

	// Stop again should be no-op
	s.Stop()
}

func TestScheduler_RefreshesImmediately(t *testing.T) {
	r := &mockRefresher{}
	s := NewScheduler(SchedulerConfig{
		Refresher: r,
		Interval:  time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = s.Start(ctx)
	defer s.Stop()

	waitFor(t, func() bool { return r.callCount() == 1 })
}

func TestScheduler_RefreshesOnTick(t *testing.T) {
	r := &mockRefresher{}
	s := NewScheduler(SchedulerConfig{
		Refresher: r,
		Interval:  20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = s.Start(ctx)
	defer s.Stop()

	waitFor(t, func() bool { return r.callCount() >= 3 })
}

func TestScheduler_ContextCancel(t *testing.T) {
	s := NewScheduler(SchedulerConfig{
		Refresher: &mockRefresher{},
		Interval:  time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	_ = s.Start(ctx)
	cancel()

	select {
	case <-s.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not exit on context cancel")
	}
}

func TestScheduler_FailureRecorded(t *testing.T) {
	wantErr := errors.New("moodle unreachable")
	r := &mockRefresher{refreshFn: func() error { return wantErr }}
	s := NewScheduler(SchedulerConfig{Refresher: r})

	err := s.TriggerNow(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}

	at, lastErr := s.LastResult()
	if at.IsZero() {
		t.Error("expected last run time")
	}
	if !errors.Is(lastErr, wantErr) {
		t.Errorf("expected last error %v, got %v", wantErr, lastErr)
	}
}

func TestScheduler_ContextCancelAllowsRestart(t *testing.T) {
	r := &mockRefresher{}
	s := NewScheduler(SchedulerConfig{
		Refresher: r,
		Interval:  time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	_ = s.Start(ctx)
	waitFor(t, func() bool { return r.callCount() == 1 })
	cancel()

	waitFor(t, func() bool { return !s.Running() })

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	if err := s.Start(ctx2); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	defer s.Stop()

	if !s.Running() {
		t.Error("expected scheduler to be running after restart")
	}
	waitFor(t, func() bool { return r.callCount() == 2 })
}

func TestScheduler_TriggerNowReturnsOwnResult(t *testing.T) {
	fail := true
	r := &mockRefresher{refreshFn: func() error {
		if fail {
			return errors.New("moodle unreachable")
		}
		return nil
	}}
	s := NewScheduler(SchedulerConfig{Refresher: r})

	if err := s.TriggerNow(context.Background()); err == nil {
		t.Fatal("expected first refresh to fail")
	}

	fail = false
	if err := s.TriggerNow(context.Background()); err != nil {
		t.Errorf("expected second refresh to succeed, got %v", err)
	}
	if _, lastErr := s.LastResult(); lastErr != nil {
		t.Errorf("expected last error cleared, got %v", lastErr)
	}
}

func TestScheduler_RefreshesIndexBuilder(t *testing.T) {
	f := newIndexerFixture(0).withLock(mocks.NewMockDistributedLock())
	s := NewScheduler(SchedulerConfig{Refresher: f.builder})

	if err := s.TriggerNow(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.services.Index() == nil {
		t.Fatal("expected index handle after refresh")
	}
	if err := s.TriggerNow(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.client.ListCalls() != 1 {
		t.Errorf("expected a single scrape across refreshes, got %d", f.client.ListCalls())
	}
}

func TestScheduler_LockLoserStillServesIndex(t *testing.T) {
	lock := mocks.NewMockDistributedLock()

	// instance A holds the build lock while it scrapes
	builderA := newIndexerFixture(0)
	lock.Hold(indexLockName, time.Hour)

	// instance B shares the index directory and lock
	instanceB := newIndexerFixture(0).withLock(lock)
	instanceB.builder.store = builderA.store

	s := NewScheduler(SchedulerConfig{Refresher: instanceB.builder, Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = s.Start(ctx)
	defer s.Stop()

	if _, _, err := builderA.builder.Load(ctx); err != nil {
		t.Fatalf("instance A build failed: %v", err)
	}
	_ = lock.Release(ctx, indexLockName)

	waitFor(t, func() bool { return instanceB.services.Index() != nil })
	if instanceB.client.ListCalls() != 0 {
		t.Errorf("instance B should reopen, not scrape; got %d scrapes", instanceB.client.ListCalls())
	}
	if got := instanceB.services.Index().Count(); got != testDocumentCount {
		t.Errorf("expected %d documents, got %d", testDocumentCount, got)
	}
}
