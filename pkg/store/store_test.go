package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *store.Store {
	return store.New(memory.NewArchive(map[string][]byte{
		"doc/layers/layer1":     []byte("0123456789"),
		"doc/layers/layer1.icc": []byte("icc"),
	}))
}

func TestStore_Protocol(t *testing.T) {
	ctx := context.Background()
	st := newStore()

	assert.Equal(t, int64(-1), st.Size())
	ok, err := st.HasFile(ctx, "doc/layers/layer1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.HasFile(ctx, "doc/layers/layer2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Open(ctx, "doc/layers/layer1"))
	assert.True(t, st.IsOpen())
	assert.Equal(t, int64(10), st.Size())

	first, err := st.Read(4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(first))

	rest, err := st.Read(100)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(rest))

	empty, err := st.Read(1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, st.Close())
	assert.False(t, st.IsOpen())
}

func TestStore_SingleOpenEntry(t *testing.T) {
	ctx := context.Background()
	st := newStore()

	require.NoError(t, st.Open(ctx, "doc/layers/layer1"))
	err := st.Open(ctx, "doc/layers/layer1.icc")
	assert.ErrorIs(t, err, domain.ErrEntryAlreadyOpen)

	require.NoError(t, st.Close())
	require.NoError(t, st.Open(ctx, "doc/layers/layer1.icc"))
	require.NoError(t, st.Close())
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	st := newStore()

	t.Run("Open Missing", func(t *testing.T) {
		err := st.Open(ctx, "doc/layers/missing")
		assert.ErrorIs(t, err, domain.ErrEntryNotFound)
		assert.False(t, st.IsOpen())
	})

	t.Run("Read Without Open", func(t *testing.T) {
		_, err := st.Read(1)
		assert.ErrorIs(t, err, domain.ErrNoEntryOpen)
	})

	t.Run("Close Without Open", func(t *testing.T) {
		assert.ErrorIs(t, st.Close(), domain.ErrNoEntryOpen)
	})
}

var errUnavailable = errors.New("archive unavailable")

type unavailableArchive struct{ ports.Archive }

func (unavailableArchive) HasEntry(ctx context.Context, name string) (bool, error) {
	return false, errUnavailable
}

func TestStore_HasFileSurfacesArchiveErrors(t *testing.T) {
	st := store.New(unavailableArchive{memory.NewArchive(nil)})

	ok, err := st.HasFile(context.Background(), "doc/layers/layer1")
	assert.ErrorIs(t, err, errUnavailable)
	assert.False(t, ok)
}

func TestReadAll(t *testing.T) {
	ctx := context.Background()
	st := newStore()

	data, err := store.ReadAll(ctx, st, "doc/layers/layer1")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	assert.False(t, st.IsOpen())

	_, err = store.ReadAll(ctx, st, "doc/layers/missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}
