package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/strata/pkg/domain"
)

// Archive implements ports.Archive in memory.
// Safe for concurrent use.
type Archive struct {
	entries map[string][]byte
	mu      sync.RWMutex
}

// NewArchive creates an archive holding a copy of entries.
func NewArchive(entries map[string][]byte) *Archive {
	a := &Archive{entries: make(map[string][]byte, len(entries))}
	for k, v := range entries {
		a.entries[k] = append([]byte(nil), v...)
	}
	return a
}

// Put adds or replaces an entry.
func (a *Archive) Put(name string, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[name] = append([]byte(nil), data...)
}

// Remove deletes an entry.
func (a *Archive) Remove(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, name)
}

// ReadEntry returns a copy of the entry so callers cannot mutate the archive.
func (a *Archive) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrEntryNotFound)
	}
	return append([]byte(nil), data...), nil
}

// HasEntry reports whether name exists.
func (a *Archive) HasEntry(ctx context.Context, name string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.entries[name]
	return ok, nil
}

// ListEntries returns all entry names, sorted.
func (a *Archive) ListEntries(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
