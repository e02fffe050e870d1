package ports

import "context"

// Archive gives random access to the named entries of a document archive.
// Entry names are forward-slash paths.
type Archive interface {
	// ReadEntry returns the full content of an entry.
	// Returns domain.ErrEntryNotFound if the entry does not exist.
	ReadEntry(ctx context.Context, name string) ([]byte, error)

	// HasEntry reports whether an entry exists.
	HasEntry(ctx context.Context, name string) (bool, error)

	// ListEntries returns all entry names in deterministic order.
	ListEntries(ctx context.Context) ([]string, error)
}
