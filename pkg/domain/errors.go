package domain

import "errors"

// Archive errors
var (
	// ErrEntryNotFound is returned by archives when an entry does not exist.
	ErrEntryNotFound = errors.New("archive entry not found")

	// ErrEntryAlreadyOpen is returned when a store is asked to open an entry while another one is still open.
	ErrEntryAlreadyOpen = errors.New("store already has an open entry")

	// ErrNoEntryOpen is returned when reading from or closing a store with no open entry.
	ErrNoEntryOpen = errors.New("store has no open entry")

	// ErrEntryTooLarge is returned when an entry decompresses past the archive's size limit.
	ErrEntryTooLarge = errors.New("archive entry too large")

	// ErrDocumentNotFound is returned when a cached document id is unknown.
	ErrDocumentNotFound = errors.New("document not found")
)

// Load errors
var (
	// ErrMissingEntry is returned when a node's required pixel data is absent from the archive.
	ErrMissingEntry = errors.New("required entry missing")

	// ErrMalformedData is returned when an entry exists but cannot be decoded.
	ErrMalformedData = errors.New("malformed entry data")

	// ErrUnmappedNode is returned when a node has no filename in the path mapping.
	ErrUnmappedNode = errors.New("node has no mapped filename")

	// ErrUnknownNodeKind is returned when the loader meets a node variant it cannot dispatch.
	ErrUnknownNodeKind = errors.New("unknown node kind")

	// ErrUnsupportedExternalLayer is returned for external layers without a registered format loader.
	ErrUnsupportedExternalLayer = errors.New("unsupported external layer format")

	// ErrUnsupportedShapeSelection marks a shape selection component that was present but not decoded.
	ErrUnsupportedShapeSelection = errors.New("shape selection components are not supported")

	// ErrUnknownColorSpace is returned by registries for unregistered color space ids.
	ErrUnknownColorSpace = errors.New("unknown color space")
)
