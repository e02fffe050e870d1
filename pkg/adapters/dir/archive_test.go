package dir_test

import (
	"context"
	"testing"

	"github.com/aretw0/strata/pkg/adapters/dir"
	contract "github.com/aretw0/strata/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_Contract(t *testing.T) {
	data := map[string][]byte{
		"mimetype":              []byte("application/x-krita"),
		"maindoc.xml":           []byte("<DOC/>"),
		"doc/layers/layer1":     []byte("pixels"),
		"doc/layers/layer1.icc": []byte("profile"),
	}
	base := t.TempDir()
	require.NoError(t, dir.WriteEntries(base, data))

	contract.ArchiveContractTest(t, dir.New(base), data)
}

func TestArchive_RejectsEscapingNames(t *testing.T) {
	archive := dir.New(t.TempDir())

	ok, err := archive.HasEntry(context.Background(), "../outside")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = archive.ReadEntry(context.Background(), "../outside")
	assert.Error(t, err)
}
