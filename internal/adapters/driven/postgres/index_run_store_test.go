package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// testDB connects to the database named by MOODLE_RAG_TEST_DATABASE_URL or skips.
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("MOODLE_RAG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MOODLE_RAG_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, DefaultConfig(url))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE index_runs"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIndexRunStore_SaveAndGet(t *testing.T) {
	store := NewIndexRunStore(testDB(t))
	ctx := context.Background()

	run := domain.NewIndexRun(domain.IndexRunModeBuilt)
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	run.Complete(11)
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.IndexRunStatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.DocumentCount != 11 {
		t.Errorf("expected 11 documents, got %d", got.DocumentCount)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestIndexRunStore_NotFound(t *testing.T) {
	store := NewIndexRunStore(testDB(t))
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Latest(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound from empty table, got %v", err)
	}
}

func TestIndexRunStore_LatestAndList(t *testing.T) {
	store := NewIndexRunStore(testDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := range 3 {
		run := domain.NewIndexRun(domain.IndexRunModeReopened)
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Save(ctx, run); err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, run.ID)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != ids[2] {
		t.Errorf("expected latest %s, got %s", ids[2], latest.ID)
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("expected newest two runs, got %v", runs)
	}
}
