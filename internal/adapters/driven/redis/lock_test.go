package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	client.Close()
}

func TestConnect_InvalidURL(t *testing.T) {
	if _, err := Connect(context.Background(), "http://not-redis"); err == nil {
		t.Error("expected error for non-redis URL")
	}
}

func TestLock_OwnerID_Unique(t *testing.T) {
	_, client := setupTestRedis(t)

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	if lock1.OwnerID() == "" {
		t.Error("expected non-empty owner ID")
	}
	if lock1.OwnerID() == lock2.OwnerID() {
		t.Errorf("expected unique owner IDs, got same: %s", lock1.OwnerID())
	}
}

func TestLock_AcquireRelease(t *testing.T) {
	_, client := setupTestRedis(t)
	lock := NewLock(client)
	other := NewLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected acquire, got %v %v", ok, err)
	}

	ok, err = other.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Error("expected second instance to be refused")
	}

	holder, err := lock.Holder(ctx, "index-rebuild")
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	if holder != lock.OwnerID() {
		t.Errorf("expected holder %s, got %s", lock.OwnerID(), holder)
	}

	if err := lock.Release(ctx, "index-rebuild"); err != nil {
		t.Fatalf("release: %v", err)
	}

	holder, _ = lock.Holder(ctx, "index-rebuild")
	if holder != "" {
		t.Errorf("expected free lock, held by %s", holder)
	}

	ok, err = other.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil || !ok {
		t.Errorf("expected acquire after release, got %v %v", ok, err)
	}
}

func TestLock_ReleaseByOtherInstanceIsIgnored(t *testing.T) {
	_, client := setupTestRedis(t)
	lock := NewLock(client)
	other := NewLock(client)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "index-rebuild", time.Minute); !ok {
		t.Fatal("expected acquire")
	}
	if err := other.Release(ctx, "index-rebuild"); err != nil {
		t.Fatalf("release: %v", err)
	}

	holder, _ := lock.Holder(ctx, "index-rebuild")
	if holder != lock.OwnerID() {
		t.Error("lock must survive a release by a non-owner")
	}
}

func TestLock_ReleaseNotHeld(t *testing.T) {
	_, client := setupTestRedis(t)

	if err := NewLock(client).Release(context.Background(), "never-acquired"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestLock_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)
	other := NewLock(client)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "index-rebuild", time.Second); !ok {
		t.Fatal("expected acquire")
	}

	mr.FastForward(2 * time.Second)

	ok, err := other.Acquire(ctx, "index-rebuild", time.Minute)
	if err != nil || !ok {
		t.Errorf("expected acquire after expiry, got %v %v", ok, err)
	}
}

func TestLock_RejectsZeroTTL(t *testing.T) {
	_, client := setupTestRedis(t)

	if _, err := NewLock(client).Acquire(context.Background(), "x", 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestLock_Ping(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)

	if err := lock.Ping(context.Background()); err != nil {
		t.Errorf("expected healthy ping, got %v", err)
	}

	mr.Close()
	if err := lock.Ping(context.Background()); err == nil {
		t.Error("expected ping error after server shutdown")
	}
}
