package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Store implements ports.Store on top of any ports.Archive.
// It enforces the one-open-entry protocol. A Store is not safe for concurrent use;
// create one per load.
type Store struct {
	archive ports.Archive
	logger  *slog.Logger

	open string // path of the open entry, empty when closed
	data []byte
	pos  int64
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for protocol diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a protocol store reading from archive.
func New(archive ports.Archive, opts ...Option) *Store {
	s := &Store{
		archive: archive,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Store = (*Store)(nil)

// Open makes path the current entry.
func (s *Store) Open(ctx context.Context, path string) error {
	if s.open != "" {
		s.logger.Error("open while another entry is open", "open", s.open, "requested", path)
		return fmt.Errorf("open %s while %s is open: %w", path, s.open, domain.ErrEntryAlreadyOpen)
	}
	data, err := s.archive.ReadEntry(ctx, path)
	if err != nil {
		return err
	}
	s.open = path
	s.data = data
	s.pos = 0
	s.logger.Debug("entry opened", "path", path, "size", len(data))
	return nil
}

// HasFile reports whether path exists.
func (s *Store) HasFile(ctx context.Context, path string) (bool, error) {
	ok, err := s.archive.HasEntry(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to look up entry %s: %w", path, err)
	}
	return ok, nil
}

// Read returns up to n bytes from the open entry.
func (s *Store) Read(n int64) ([]byte, error) {
	if s.open == "" {
		return nil, domain.ErrNoEntryOpen
	}
	if n < 0 {
		return nil, errors.New("negative read size")
	}
	remaining := int64(len(s.data)) - s.pos
	if n > remaining {
		n = remaining
	}
	out := s.data[s.pos : s.pos+n]
	s.pos += n
	return out, nil
}

// Size returns the size of the open entry, -1 when nothing is open.
func (s *Store) Size() int64 {
	if s.open == "" {
		return -1
	}
	return int64(len(s.data))
}

// Close releases the open entry.
func (s *Store) Close() error {
	if s.open == "" {
		return domain.ErrNoEntryOpen
	}
	s.logger.Debug("entry closed", "path", s.open)
	s.open = ""
	s.data = nil
	s.pos = 0
	return nil
}

// IsOpen reports whether an entry is currently open.
func (s *Store) IsOpen() bool {
	return s.open != ""
}

// ReadAll opens path, reads it completely and closes it again.
func ReadAll(ctx context.Context, st ports.Store, path string) (data []byte, err error) {
	if err := st.Open(ctx, path); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return st.Read(st.Size())
}
