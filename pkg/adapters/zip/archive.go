package zip

import (
	stdzip "archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/aretw0/strata/pkg/domain"
)

// DefaultMaxBytes bounds decompressed data when no WithMaxBytes option is given.
const DefaultMaxBytes = 1 << 30

// Archive implements ports.Archive over a zip file, the on-disk form of a KRA document.
type Archive struct {
	files    map[string]*stdzip.File
	closer   io.Closer
	maxBytes int64
}

// Option configures an Archive.
type Option func(*Archive)

// WithMaxBytes caps the decompressed size of a single entry and of the
// whole archive as read by Entries.
func WithMaxBytes(n int64) Option {
	return func(a *Archive) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

// Open opens a zip archive from disk. The caller must Close it.
func Open(path string, opts ...Option) (*Archive, error) {
	rc, err := stdzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive %s: %w", path, err)
	}
	a := newArchive(&rc.Reader, opts)
	a.closer = rc
	return a, nil
}

// NewFromBytes reads a zip archive held in memory.
func NewFromBytes(data []byte, opts ...Option) (*Archive, error) {
	r, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip archive: %w", err)
	}
	return newArchive(r, opts), nil
}

func newArchive(r *stdzip.Reader, opts []Option) *Archive {
	a := &Archive{files: make(map[string]*stdzip.File, len(r.File)), maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(a)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		a.files[f.Name] = f
	}
	return a
}

// Close releases the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// ReadEntry decompresses an entry. Entries larger than the archive's
// limit fail with domain.ErrEntryTooLarge.
func (a *Archive) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	return a.readEntry(name, a.maxBytes)
}

func (a *Archive) readEntry(name string, limit int64) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrEntryNotFound)
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%s declares %d bytes, limit %d: %w", name, f.UncompressedSize64, limit, domain.ErrEntryTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
	}
	defer rc.Close()

	// The declared size is not trusted; read one byte past the limit to detect overruns.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", name, limit, domain.ErrEntryTooLarge)
	}
	return data, nil
}

// HasEntry reports whether name exists.
func (a *Archive) HasEntry(ctx context.Context, name string) (bool, error) {
	_, ok := a.files[name]
	return ok, nil
}

// ListEntries returns all entry names, sorted.
func (a *Archive) ListEntries(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(a.files))
	for name := range a.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Entries reads every entry into memory. The archive's limit applies to
// the combined decompressed size.
func (a *Archive) Entries(ctx context.Context) (map[string][]byte, error) {
	out := make(map[string][]byte, len(a.files))
	remaining := a.maxBytes
	for name := range a.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := a.readEntry(name, remaining)
		if err != nil {
			return nil, err
		}
		remaining -= int64(len(data))
		out[name] = data
	}
	return out, nil
}

// MimetypeEntry is the first, uncompressed entry of a KRA archive.
const MimetypeEntry = "mimetype"

// Write encodes entries as a zip archive. A "mimetype" entry is stored first
// and uncompressed; the rest follow in sorted order.
func Write(w io.Writer, entries map[string][]byte) error {
	zw := stdzip.NewWriter(w)

	names := make([]string, 0, len(entries))
	for name := range entries {
		if name != MimetypeEntry {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if _, ok := entries[MimetypeEntry]; ok {
		names = append([]string{MimetypeEntry}, names...)
	}

	for _, name := range names {
		method := stdzip.Deflate
		if name == MimetypeEntry {
			method = stdzip.Store
		}
		fw, err := zw.CreateHeader(&stdzip.FileHeader{Name: name, Method: method})
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", name, err)
		}
		if _, err := fw.Write(entries[name]); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}
	return zw.Close()
}
