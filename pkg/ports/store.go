package ports

import "context"

// Store is the sequential entry protocol used by the loader.
// At most one entry is open at a time: Open, then Size/Read, then Close.
type Store interface {
	// Open makes the entry at path the current entry.
	// Returns domain.ErrEntryNotFound if it does not exist and
	// domain.ErrEntryAlreadyOpen if another entry has not been closed.
	Open(ctx context.Context, path string) error

	// HasFile reports whether an entry exists. It does not change the open entry.
	// A missing entry is (false, nil); archive failures are returned as errors.
	HasFile(ctx context.Context, path string) (bool, error)

	// Read returns up to n bytes from the current position of the open entry.
	Read(n int64) ([]byte, error)

	// Size is the total size of the open entry, or -1 when nothing is open.
	Size() int64

	// Close releases the open entry.
	Close() error
}
