package domain

import "sync"

// RuntimeConfig tracks what the running process can currently serve.
// Static fields are set at startup, the index state changes whenever the
// scheduler loads a new index handle.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	LockBackend string // "redis", "postgres" or "none"
	IndexDir    string

	// Dynamic state (updated on every index load)
	indexLoaded bool
	lastRun     *IndexRun
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(lockBackend, indexDir string) *RuntimeConfig {
	return &RuntimeConfig{
		LockBackend: lockBackend,
		IndexDir:    indexDir,
	}
}

// IndexLoaded returns whether a vector index handle is live
func (c *RuntimeConfig) IndexLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexLoaded
}

// SetIndexLoaded updates the index availability flag
func (c *RuntimeConfig) SetIndexLoaded(loaded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexLoaded = loaded
}

// LastRun returns a copy of the most recent index run, or nil
func (c *RuntimeConfig) LastRun() *IndexRun {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastRun == nil {
		return nil
	}
	run := *c.lastRun
	return &run
}

// RecordRun stores the most recent index run
func (c *RuntimeConfig) RecordRun(run *IndexRun) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRun = run
}

// CanAnswer returns true if chat requests can be served
func (c *RuntimeConfig) CanAnswer() bool {
	return c.IndexLoaded()
}
