package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ArchiveContractTest is a reusable test suite that verifies if an adapter complies with ports.Archive.
// setupData must hold exactly the entries present in archive.
func ArchiveContractTest(t *testing.T, archive ports.Archive, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("ReadEntry_Success", func(t *testing.T) {
		for name, expected := range setupData {
			content, err := archive.ReadEntry(ctx, name)
			require.NoError(t, err, "reading %s", name)
			assert.Equal(t, expected, content, "content mismatch for %s", name)
		}
	})

	t.Run("ReadEntry_NotFound", func(t *testing.T) {
		_, err := archive.ReadEntry(ctx, "non-existent/entry")
		assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	})

	t.Run("HasEntry", func(t *testing.T) {
		for name := range setupData {
			ok, err := archive.HasEntry(ctx, name)
			require.NoError(t, err)
			assert.True(t, ok, "entry %s should exist", name)
		}
		ok, err := archive.HasEntry(ctx, "non-existent/entry")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ListEntries", func(t *testing.T) {
		names, err := archive.ListEntries(ctx)
		require.NoError(t, err)
		assert.Len(t, names, len(setupData))
		for name := range setupData {
			assert.Contains(t, names, name)
		}
		assert.IsNonDecreasing(t, names, "entries should be listed in sorted order")
	})
}

// RunDocumentCacheContract runs a suite of tests to verify that a DocumentCache implementation
// adheres to the defined interface contract.
func RunDocumentCacheContract(t *testing.T, cache ports.DocumentCache) {
	ctx := context.Background()
	docID := "contract-doc-" + time.Now().Format("20060102150405")
	entries := map[string][]byte{
		"mimetype":          []byte("application/x-krita"),
		"maindoc.xml":       []byte("<DOC/>"),
		"doc/layers/layer1": {0, 1, 2, 3},
	}

	t.Run("Put and Archive", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, docID, entries))

		archive, err := cache.Archive(ctx, docID)
		require.NoError(t, err)
		ArchiveContractTest(t, archive, entries)
	})

	t.Run("Archive Non-Existent", func(t *testing.T) {
		_, err := cache.Archive(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id2 := docID + "-2"
		require.NoError(t, cache.Put(ctx, id2, entries))
		defer func() { _ = cache.Delete(ctx, id2) }()

		ids, err := cache.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, docID)
		assert.Contains(t, ids, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, docID))

		_, err := cache.Archive(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Archive after Delete should return ErrDocumentNotFound")
	})
}
