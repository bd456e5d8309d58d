package infer

import (
	"sync"

	"github.com/tmackey/docsection/internal/outline"
)

// Cache memoizes inference results per document identity, typically a
// content hash. Inference over the same document should run at most once
// per process; the cache is explicit and owned by the caller rather than
// hidden inside the client.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]outline.Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]outline.Entry)}
}

// Get returns a copy of the cached outline for key, if present. A copy is
// returned because the engine classifies entries in place.
func (c *Cache) Get(key string) ([]outline.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	out := make([]outline.Entry, len(cached))
	copy(out, cached)
	return out, true
}

// Put stores the outline for key.
func (c *Cache) Put(key string, entries []outline.Entry) {
	stored := make([]outline.Entry, len(entries))
	copy(stored, entries)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = stored
}

// Invalidate drops the cached outline for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
