package postgres

import (
	"context"
	"testing"
	"time"
)

func TestHashLockName(t *testing.T) {
	if hashLockName("index-rebuild") != hashLockName("index-rebuild") {
		t.Error("hash must be stable")
	}
	if hashLockName("index-rebuild") == hashLockName("other") {
		t.Error("different names should hash differently")
	}
}

func TestAdvisoryLock_AcquireRelease(t *testing.T) {
	db := testDB(t)
	first := NewAdvisoryLock(db)
	second := NewAdvisoryLock(db)
	ctx := context.Background()

	ok, err := first.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got %v %v", ok, err)
	}

	ok, err = second.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Error("expected second instance to be refused")
	}

	ok, _ = first.Acquire(ctx, "index-rebuild", time.Minute)
	if ok {
		t.Error("expected re-acquire by holder to be refused")
	}

	if err := first.Release(ctx, "index-rebuild"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := first.Release(ctx, "index-rebuild"); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}

	ok, err = second.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil || !ok {
		t.Errorf("expected acquire after release to succeed, got %v %v", ok, err)
	}
	second.Release(ctx, "index-rebuild")
}
