package ai

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Ensure CachedEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// DefaultQueryCacheSize is the number of query embeddings kept in memory
const DefaultQueryCacheSize = 1024

// CachedEmbedding memoises query embeddings in an LRU cache.
// Document embeddings are passed through uncached since each index build embeds every document once.
type CachedEmbedding struct {
	driven.EmbeddingService
	cache *lru.Cache
}

// NewCachedEmbedding wraps an embedding service with a query cache of the given size.
func NewCachedEmbedding(inner driven.EmbeddingService, size int) (*CachedEmbedding, error) {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &CachedEmbedding{EmbeddingService: inner, cache: cache}, nil
}

// EmbedQuery returns the cached embedding for query or computes and stores it.
// Failed calls are not cached.
func (c *CachedEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	key := c.Model() + "\x00" + query
	if v, ok := c.cache.Get(key); ok {
		return v.([]float32), nil
	}

	emb, err := c.EmbeddingService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, emb)
	return emb, nil
}

// Len returns the number of cached query embeddings
func (c *CachedEmbedding) Len() int {
	return c.cache.Len()
}

// Purge empties the cache
func (c *CachedEmbedding) Purge() {
	c.cache.Purge()
}
