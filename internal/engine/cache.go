// cache.go is the in-memory cache of composed preview documents. Entries
// are keyed by template ID, its updated_at timestamp and the language, so
// any save produces a cache miss on its own.
package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type cacheKey struct {
	id      uuid.UUID
	version int64 // updated_at in nanoseconds
	lang    string
}

// documentCache is a concurrency-safe map of composed documents.
type documentCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

func newDocumentCache() *documentCache {
	return &documentCache{entries: make(map[cacheKey]string)}
}

func (c *documentCache) get(k cacheKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.entries[k]
	return doc, ok
}

// put stores a document and drops older versions of the same template.
func (c *documentCache) put(k cacheKey, doc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for old := range c.entries {
		if old.id == k.id && old.version != k.version {
			delete(c.entries, old)
		}
	}
	c.entries[k] = doc
	slog.Debug("preview cached", "id", k.id, "lang", k.lang, "size", len(c.entries))
}

// invalidate removes every cached document of a template.
func (c *documentCache) invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("preview cache invalidated", "id", id)
}

func (c *documentCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
