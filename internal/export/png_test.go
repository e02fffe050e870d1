package export_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/aretw0/strata/internal/export"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePNG(t *testing.T) {
	doc := testutils.LoadedDocument(t, testutils.SampleDocument())

	t.Run("Paint Layer Full Size", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, export.WritePNG(&buf, doc.Layer("Background"), 0))

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
		_, _, _, a := img.At(3, 3).RGBA()
		assert.Equal(t, uint32(0xffff), a)
	})

	t.Run("Scaled", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, export.WritePNG(&buf, doc.Layer("Background"), 16))

		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 16, img.Bounds().Dx())
		assert.Equal(t, 16, img.Bounds().Dy())
	})

	t.Run("Mask Selection", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, export.WritePNG(&buf, doc.Layer("Fade"), 0))
	})

	t.Run("No Pixels", func(t *testing.T) {
		var buf bytes.Buffer
		err := export.WritePNG(&buf, doc.Layer("Group"), 0)
		assert.ErrorIs(t, err, export.ErrNoPixels)
	})
}
