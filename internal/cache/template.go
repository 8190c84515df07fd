package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TemplateLoader fetches a template body from backing storage on a miss.
type TemplateLoader func(ctx context.Context, id string) (string, error)

// TemplateCache is a capacity-bounded LRU of template id → body with no
// expiry: templates change rarely and only through explicit writes, which
// invalidate the whole cache rather than tracking individual entries.
type TemplateCache struct {
	mu   sync.Mutex
	lru  *lru.Cache[string, string]
	load TemplateLoader
}

// NewTemplateCache creates a cache holding at most capacity bodies.
func NewTemplateCache(capacity int, load TemplateLoader) (*TemplateCache, error) {
	l, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &TemplateCache{lru: l, load: load}, nil
}

// Get returns the template body for id, loading and caching it on a miss.
// Loader failures are returned as-is and nothing is cached.
func (c *TemplateCache) Get(ctx context.Context, id string) (string, error) {
	if body, ok := c.lru.Get(id); ok {
		return body, nil
	}

	body, err := c.load(ctx, id)
	if err != nil {
		return "", err
	}
	c.lru.Add(id, body)
	return body, nil
}

// Clear drops every cached body and returns how many were evicted. Called
// after any template write.
func (c *TemplateCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.lru.Len()
	c.lru.Purge()
	return n
}
