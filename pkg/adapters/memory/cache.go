package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Cache implements ports.DocumentCache in memory.
// Safe for concurrent use.
type Cache struct {
	docs map[string]*Archive
	mu   sync.RWMutex
}

// NewCache creates an empty document cache.
func NewCache() *Cache {
	return &Cache{docs: make(map[string]*Archive)}
}

// Put stores a copy of entries under id.
func (c *Cache) Put(ctx context.Context, id string, entries map[string][]byte) error {
	archive := NewArchive(entries)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[id] = archive
	return nil
}

// Archive returns the cached archive.
func (c *Cache) Archive(ctx context.Context, id string) (ports.Archive, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	archive, ok := c.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return archive, nil
}

// Delete removes the document.
func (c *Cache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
	return nil
}

// List returns cached document ids, sorted.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
