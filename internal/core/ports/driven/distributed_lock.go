package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates index rebuilds between instances that share an index directory.
type DistributedLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns false without error if another instance holds it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock. Safe to call when the lock is not held.
	Release(ctx context.Context, name string) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
