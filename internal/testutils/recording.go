package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/strata/pkg/ports"
)

// RecordingStore wraps a ports.Store and records every path it is asked about.
type RecordingStore struct {
	ports.Store

	mu      sync.Mutex
	opened  []string
	queried []string
}

// NewRecordingStore wraps st.
func NewRecordingStore(st ports.Store) *RecordingStore {
	return &RecordingStore{Store: st}
}

func (r *RecordingStore) Open(ctx context.Context, path string) error {
	r.mu.Lock()
	r.opened = append(r.opened, path)
	r.mu.Unlock()
	return r.Store.Open(ctx, path)
}

func (r *RecordingStore) HasFile(ctx context.Context, path string) (bool, error) {
	r.mu.Lock()
	r.queried = append(r.queried, path)
	r.mu.Unlock()
	return r.Store.HasFile(ctx, path)
}

// Opened returns the paths passed to Open, in order.
func (r *RecordingStore) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.opened...)
}

// Touched returns the paths passed to Open or HasFile.
func (r *RecordingStore) Touched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.queried...)
	return append(out, r.opened...)
}
