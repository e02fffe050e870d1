package testutils

import (
	"context"
	"testing"

	"github.com/aretw0/strata"
	"github.com/stretchr/testify/require"
)

// LoadedDocument loads fixture through the public API in best-effort mode.
func LoadedDocument(t *testing.T, fixture *Document) *strata.Document {
	t.Helper()
	doc, err := strata.Load(context.Background(), fixture.Archive(), strata.WithBestEffort(true))
	require.NoError(t, err)
	return doc
}

// SampleDocument is a small v2 document with a group, a mask, a clone and one
// layer whose pixel data is missing.
func SampleDocument() *Document {
	doc := NewDocument("sample", 2)
	doc.Layers = []Layer{
		{Name: "Background", Filename: "layer1", NodeType: "paintlayer", Masks: []Layer{
			{Name: "Fade", Filename: "mask1", NodeType: "transparencymask"},
		}},
		{Name: "Group", Filename: "layer2", NodeType: "grouplayer", Layers: []Layer{
			{Name: "Broken", Filename: "layer3", NodeType: "paintlayer"},
			{Name: "Copy", Filename: "layer4", NodeType: "clonelayer", CloneFrom: "Background"},
		}},
	}
	doc.Put("layer1", "", SolidTiles(4, 0xff))
	doc.Put("mask1", ".pixelselection", SolidTiles(1, 0x80))
	return doc
}
