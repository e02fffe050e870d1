package ports

import "context"

// DocumentCache keeps uploaded document archives addressable by id.
type DocumentCache interface {
	// Put stores all entries of a document under id, replacing any previous content.
	Put(ctx context.Context, id string, entries map[string][]byte) error

	// Archive returns read access to a cached document.
	// Returns domain.ErrDocumentNotFound if the id is unknown.
	Archive(ctx context.Context, id string) (Archive, error)

	// Delete removes a cached document.
	Delete(ctx context.Context, id string) error

	// List returns the ids of cached documents.
	List(ctx context.Context) ([]string, error)
}
