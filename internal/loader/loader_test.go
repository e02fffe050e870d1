package loader_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/aretw0/strata/internal/codec"
	"github.com/aretw0/strata/internal/loader"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/manifest"
	"github.com/aretw0/strata/internal/testutils"
	"github.com/aretw0/strata/pkg/colorspace"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaded struct {
	doc    *manifest.Document
	loader *loader.Loader
	err    error
}

func (l loaded) node(t *testing.T, name string) domain.Node {
	t.Helper()
	n := l.doc.Image.FindByName(name)
	require.NotNil(t, n, "node %q not found", name)
	return n
}

func load(t *testing.T, doc *testutils.Document, opts ...loader.Option) loaded {
	t.Helper()
	return loadWith(t, doc, nil, opts...)
}

// loadWith loads doc; wrap, when set, decorates the protocol store.
func loadWith(t *testing.T, doc *testutils.Document, wrap func(ports.Store) ports.Store, opts ...loader.Option) loaded {
	t.Helper()
	parsed, err := manifest.Parse(doc.Maindoc(), colorspace.NewRegistry())
	require.NoError(t, err)

	protocol := doc.Store()
	var st ports.Store = protocol
	if wrap != nil {
		st = wrap(protocol)
	}
	l := loader.New(parsed.Image, st, parsed.Paths, doc.Name, parsed.SyntaxVersion, opts...)
	err = l.Load(context.Background())
	assert.False(t, protocol.IsOpen(), "an entry was left open")
	return loaded{doc: parsed, loader: l, err: err}
}

func paintDoc(version int) *testutils.Document {
	doc := testutils.NewDocument("scene", version)
	doc.Layers = []testutils.Layer{{Name: "Background", Filename: "layer1", NodeType: "paintlayer"}}
	doc.Put("layer1", "", testutils.SolidTiles(4, 0x7f))
	return doc
}

func TestLoad_PaintLayerWithoutProfile(t *testing.T) {
	res := load(t, paintDoc(2))
	require.NoError(t, res.err)

	bg := res.node(t, "Background").(*domain.PaintLayer)
	dev := bg.PaintDevice()
	assert.True(t, dev.ColorSpace().Equal(domain.RGBA8))
	assert.Nil(t, dev.ColorSpace().Profile)
	assert.Equal(t, image.Rect(0, 0, 64, 64), dev.Extent())
	assert.Equal(t, []byte{0x7f, 0x7f, 0x7f, 0x7f}, dev.Pixel(10, 10))
	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 64, 64)}, bg.DirtyRegions())

	result, ok := res.loader.Report().Result(bg.ID())
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeLoaded, result.Outcome)
}

func TestLoad_PaintLayerProfile(t *testing.T) {
	payload := testutils.SolidTiles(4, 0x42, image.Pt(0, 0), image.Pt(64, 0))

	t.Run("Rebinds Without Touching Samples", func(t *testing.T) {
		icc := testutils.ICCProfile("RGB ", "Display P3")
		doc := paintDoc(2)
		doc.Put("layer1", "", payload)
		doc.Put("layer1", loader.SuffixICC, icc)

		res := load(t, doc)
		require.NoError(t, res.err)

		dev := res.node(t, "Background").(*domain.PaintLayer).PaintDevice()
		cs := dev.ColorSpace()
		assert.Equal(t, "RGBA", cs.ID)
		require.NotNil(t, cs.Profile)
		assert.Equal(t, icc, cs.Profile.Data)
		assert.Equal(t, "Display P3", cs.Profile.Name)

		want, err := codec.DecodeTiles(payload, 4)
		require.NoError(t, err)
		if diff := cmp.Diff(want, dev.Tiles()); diff != "" {
			t.Errorf("samples changed by profile rebinding (-want +got):\n%s", diff)
		}
	})

	t.Run("Mismatched Profile Fails Node", func(t *testing.T) {
		doc := paintDoc(2)
		doc.Put("layer1", loader.SuffixICC, testutils.ICCProfile("GRAY", "Gray"))

		res := load(t, doc)
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, domain.ErrMalformedData)

		var nodeErr *loader.NodeError
		require.ErrorAs(t, res.err, &nodeErr)
		assert.Equal(t, "scene/layers/layer1.icc", nodeErr.Location)
	})

	t.Run("Truncated Profile Fails Node", func(t *testing.T) {
		doc := paintDoc(2)
		doc.Put("layer1", loader.SuffixICC, []byte("not a profile"))

		res := load(t, doc)
		assert.ErrorIs(t, res.err, domain.ErrMalformedData)
	})
}

func TestLoad_PaintLayerPixelData(t *testing.T) {
	t.Run("Missing Entry", func(t *testing.T) {
		doc := paintDoc(2)
		delete(doc.Entries, doc.Location("layer1", ""))

		res := load(t, doc)
		assert.ErrorIs(t, res.err, domain.ErrMissingEntry)
		assert.Equal(t, 1, res.loader.Report().Failed())
	})

	t.Run("Malformed Entry Disconnects Device", func(t *testing.T) {
		doc := paintDoc(2)
		doc.Put("layer1", "", []byte("VERSION 2\nTILEWIDTH 64\ngarbage"))

		res := load(t, doc)
		assert.ErrorIs(t, res.err, domain.ErrMalformedData)

		dev := res.node(t, "Background").(*domain.PaintLayer).PaintDevice()
		assert.True(t, dev.Disconnected())
		assert.True(t, dev.IsEmpty())
	})

	t.Run("Unmapped Node", func(t *testing.T) {
		doc := paintDoc(2)
		doc.Layers[0].Filename = ""

		res := load(t, doc)
		assert.ErrorIs(t, res.err, domain.ErrUnmappedNode)
	})
}

func TestLoad_LegacyMask(t *testing.T) {
	withMask := func(version int, mask []byte) *testutils.Document {
		doc := paintDoc(version)
		doc.Layers[0].Masks = []testutils.Layer{{Name: "Existing", Filename: "mask1", NodeType: "selectionmask"}}
		doc.Put("mask1", loader.SuffixPixelSelection, testutils.SolidTiles(1, 0xff))
		doc.Put("layer1", loader.SuffixLegacyMask, mask)
		return doc
	}

	t.Run("Version 1 Synthesizes Transparency Mask First", func(t *testing.T) {
		res := load(t, withMask(1, testutils.SolidTiles(1, 0x80)))
		require.NoError(t, res.err)

		children := res.node(t, "Background").Children()
		require.Len(t, children, 2)

		synth, ok := children[0].(*domain.TransparencyMask)
		require.True(t, ok, "first child is %T", children[0])
		require.NotNil(t, synth.Selection())
		assert.True(t, synth.Selection().HasPixelSelection())
		assert.Equal(t, []byte{0x80}, synth.Selection().Pixel.Pixel(0, 0))
		assert.Equal(t, "Existing", children[1].Name())
		assert.Equal(t, 1, res.loader.Report().LegacyMasks)
	})

	t.Run("Version 1 Malformed Mask Is Discarded", func(t *testing.T) {
		res := load(t, withMask(1, []byte("not tiles")))
		require.NoError(t, res.err)

		children := res.node(t, "Background").Children()
		require.Len(t, children, 1)
		assert.Equal(t, "Existing", children[0].Name())
		assert.Zero(t, res.loader.Report().LegacyMasks)
	})

	t.Run("Version 2 Ignores Mask Entry", func(t *testing.T) {
		res := load(t, withMask(2, testutils.SolidTiles(1, 0x80)))
		require.NoError(t, res.err)
		assert.Len(t, res.node(t, "Background").Children(), 1)
	})
}

func adjustmentDoc(version int) *testutils.Document {
	doc := testutils.NewDocument("scene", version)
	doc.Layers = []testutils.Layer{{Name: "Levels", Filename: "layer1", NodeType: "adjustmentlayer", Filter: "levels"}}
	doc.Put("layer1", loader.SuffixLegacySelection, testutils.SolidTiles(1, 0x11))
	doc.Put("layer1", loader.SuffixPixelSelection, testutils.SolidTiles(1, 0x22))
	doc.Put("layer1", loader.SuffixFilterConfig, []byte(`<!DOCTYPE params>
<params version="2">
 <param type="string" name="gamma">1.5</param>
</params>`))
	return doc
}

func TestLoad_AdjustmentLayerSelectionByVersion(t *testing.T) {
	legacy := "scene/layers/layer1" + loader.SuffixLegacySelection
	pixel := "scene/layers/layer1" + loader.SuffixPixelSelection
	legacyMask := "scene/layers/layer1" + loader.SuffixLegacyMask

	tests := []struct {
		name       string
		version    int
		wantPixel  []byte
		untouched  []string
		wantOpened string
	}{
		{"Version 1 Legacy Buffer", 1, []byte{0x11}, []string{pixel}, legacy},
		{"Version 2 Components", 2, []byte{0x22}, []string{legacy}, pixel},
		{"Version 3 Empty", 3, nil, []string{legacy, pixel, legacyMask}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *testutils.RecordingStore
			res := loadWith(t, adjustmentDoc(tt.version), func(st ports.Store) ports.Store {
				rec = testutils.NewRecordingStore(st)
				return rec
			})
			require.NoError(t, res.err)

			adj := res.node(t, "Levels").(*domain.AdjustmentLayer)
			sel := adj.Selection()
			require.NotNil(t, sel)
			if tt.wantPixel == nil {
				assert.True(t, sel.IsEmpty())
			} else {
				require.True(t, sel.HasPixelSelection())
				assert.Equal(t, tt.wantPixel, sel.Pixel.Pixel(5, 5))
			}

			touched := rec.Touched()
			for _, path := range tt.untouched {
				assert.NotContains(t, touched, path)
			}
			if tt.wantOpened != "" {
				assert.Contains(t, rec.Opened(), tt.wantOpened)
			}

			gamma, ok := adj.Filter().Get("gamma")
			require.True(t, ok, "filter configuration loads at every version")
			assert.Equal(t, "1.5", gamma)
			assert.Equal(t, 2, adj.Filter().Version)
		})
	}
}

func TestLoad_FilterConfiguration(t *testing.T) {
	t.Run("Empty Entry Keeps Defaults", func(t *testing.T) {
		doc := adjustmentDoc(2)
		doc.Put("layer1", loader.SuffixFilterConfig, []byte{})

		res := load(t, doc)
		require.NoError(t, res.err)
		adj := res.node(t, "Levels").(*domain.AdjustmentLayer)
		assert.Empty(t, adj.Filter().Params)
		assert.Equal(t, 1, adj.Filter().Version)
	})

	t.Run("Malformed Entry Fails Node", func(t *testing.T) {
		doc := adjustmentDoc(2)
		doc.Put("layer1", loader.SuffixFilterConfig, []byte("<params><param>"))

		res := load(t, doc)
		assert.ErrorIs(t, res.err, domain.ErrMalformedData)
	})

	t.Run("Filter Mask", func(t *testing.T) {
		doc := paintDoc(2)
		doc.Layers[0].Masks = []testutils.Layer{{Name: "Blur", Filename: "mask1", NodeType: "filtermask", Filter: "blur"}}
		doc.Put("mask1", loader.SuffixFilterConfig, testutils.FilterXML(t, 1, map[string]string{"halfWidth": "5"}))

		res := load(t, doc)
		require.NoError(t, res.err)

		mask := res.node(t, "Blur").(*domain.FilterMask)
		var params struct {
			HalfWidth int `mapstructure:"halfWidth"`
		}
		require.NoError(t, mask.Filter().Decode(&params))
		assert.Equal(t, 5, params.HalfWidth)
		assert.NotNil(t, mask.Selection())
	})
}

func TestLoad_GeneratorLayer(t *testing.T) {
	doc := testutils.NewDocument("scene", 2)
	doc.Layers = []testutils.Layer{{Name: "Noise", Filename: "layer1", NodeType: "generatorlayer", Generator: "noise"}}
	doc.Put("layer1", "", testutils.SolidTiles(4, 0x01))
	doc.Put("layer1", loader.SuffixPixelSelection, testutils.SolidTiles(1, 0xff))
	doc.Put("layer1", loader.SuffixFilterConfig, testutils.FilterXML(t, 1, map[string]string{"seed": "42"}))

	res := load(t, doc)
	require.NoError(t, res.err)

	gen := res.node(t, "Noise").(*domain.GeneratorLayer)
	assert.False(t, gen.PaintDevice().IsEmpty())
	assert.True(t, gen.Selection().HasPixelSelection())
	seed, _ := gen.Generator().Get("seed")
	assert.Equal(t, "42", seed)
	assert.Len(t, gen.DirtyRegions(), 1)
}

func TestLoad_SelectionComponents(t *testing.T) {
	maskDoc := func() *testutils.Document {
		doc := paintDoc(2)
		doc.Layers[0].Masks = []testutils.Layer{{Name: "Mask", Filename: "mask1", NodeType: "transparencymask"}}
		return doc
	}

	t.Run("Pixel Only", func(t *testing.T) {
		doc := maskDoc()
		doc.Put("mask1", loader.SuffixPixelSelection, testutils.SolidTiles(1, 0xff))

		res := load(t, doc)
		require.NoError(t, res.err)

		sel := res.node(t, "Mask").(*domain.TransparencyMask).Selection()
		require.NotNil(t, sel)
		assert.True(t, sel.HasPixelSelection())
		assert.Nil(t, sel.Shape)
		assert.Empty(t, res.loader.Report().Limitations)
	})

	t.Run("Neither", func(t *testing.T) {
		res := load(t, maskDoc())
		require.NoError(t, res.err)

		sel := res.node(t, "Mask").(*domain.TransparencyMask).Selection()
		require.NotNil(t, sel)
		assert.True(t, sel.IsEmpty())
		assert.Nil(t, sel.Pixel)
	})

	t.Run("Shape Selection Is Reported", func(t *testing.T) {
		doc := maskDoc()
		doc.Put("mask1", loader.SuffixShapeSelection, []byte("<shapes/>"))

		res := load(t, doc)
		require.NoError(t, res.err)

		lims := res.loader.Report().Limitations
		require.Len(t, lims, 1)
		assert.ErrorIs(t, lims[0].Err, domain.ErrUnsupportedShapeSelection)
		assert.Equal(t, "scene/layers/mask1.shapeselection", lims[0].Location)
	})

	t.Run("Malformed Pixel Selection Fails Mask", func(t *testing.T) {
		doc := maskDoc()
		doc.Put("mask1", loader.SuffixPixelSelection, []byte("junk"))

		res := load(t, doc)
		assert.ErrorIs(t, res.err, domain.ErrMalformedData)
	})
}

func TestLoad_GroupAggregatesFailures(t *testing.T) {
	doc := testutils.NewDocument("scene", 2)
	doc.Layers = []testutils.Layer{
		{Name: "Outer", Filename: "layer1", NodeType: "grouplayer", Layers: []testutils.Layer{
			{Name: "Inner", Filename: "layer2", NodeType: "grouplayer", Layers: []testutils.Layer{
				{Name: "Broken", Filename: "layer3", NodeType: "paintlayer"},
				{Name: "Cousin", Filename: "layer4", NodeType: "paintlayer"},
			}},
			{Name: "Sibling", Filename: "layer5", NodeType: "paintlayer"},
		}},
		{Name: "Unrelated", Filename: "layer6", NodeType: "paintlayer"},
	}
	for _, f := range []string{"layer4", "layer5", "layer6"} {
		doc.Put(f, "", testutils.SolidTiles(4, 0x33))
	}

	res := load(t, doc)
	require.Error(t, res.err)

	var nodeErr *loader.NodeError
	require.ErrorAs(t, res.err, &nodeErr)
	assert.Equal(t, "Broken", nodeErr.Name)
	assert.ErrorIs(t, res.err, domain.ErrMissingEntry)

	report := res.loader.Report()
	outcome := func(name string) domain.Outcome {
		r, ok := report.Result(res.node(t, name).ID())
		require.True(t, ok)
		return r.Outcome
	}
	assert.Equal(t, domain.OutcomeFailed, outcome("Outer"))
	assert.Equal(t, domain.OutcomeFailed, outcome("Inner"))
	assert.Equal(t, domain.OutcomeFailed, outcome("Broken"))
	assert.Equal(t, domain.OutcomeLoaded, outcome("Cousin"))
	assert.Equal(t, domain.OutcomeLoaded, outcome("Sibling"))
	assert.Equal(t, domain.OutcomeLoaded, outcome("Unrelated"))
	assert.Equal(t, 3, report.Failed())

	for _, name := range []string{"Cousin", "Sibling", "Unrelated"} {
		dev := res.node(t, name).(*domain.PaintLayer).PaintDevice()
		assert.False(t, dev.IsEmpty(), name)
	}
	for _, name := range []string{"Outer", "Inner"} {
		assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 64, 64)}, res.node(t, name).DirtyRegions(), name)
	}
	assert.Len(t, res.doc.Image.Root.DirtyRegions(), 1)
}

func TestLoad_LayerKeepsOwnOutcomeWhenMaskFails(t *testing.T) {
	doc := paintDoc(2)
	doc.Layers[0].Masks = []testutils.Layer{{Name: "Mask", Filename: "mask1", NodeType: "transparencymask"}}
	doc.Put("mask1", loader.SuffixPixelSelection, []byte("junk"))
	doc.Layers = append(doc.Layers, testutils.Layer{Name: "Group", Filename: "layer2", NodeType: "grouplayer",
		Layers: []testutils.Layer{{Name: "Missing", Filename: "layer3", NodeType: "paintlayer"}}})

	res := load(t, doc)
	assert.ErrorIs(t, res.err, domain.ErrMalformedData)
	assert.ErrorIs(t, res.err, domain.ErrMissingEntry)

	report := res.loader.Report()
	outcome := func(name string) domain.Outcome {
		r, ok := report.Result(res.node(t, name).ID())
		require.True(t, ok)
		return r.Outcome
	}
	assert.Equal(t, domain.OutcomeLoaded, outcome("Background"))
	assert.Equal(t, domain.OutcomeFailed, outcome("Mask"))
	assert.Equal(t, domain.OutcomeFailed, outcome("Group"))
	assert.Equal(t, domain.OutcomeFailed, outcome("Missing"))
	assert.Equal(t, 3, report.Failed())

	bg := res.node(t, "Background").(*domain.PaintLayer)
	assert.False(t, bg.PaintDevice().IsEmpty())
	assert.Len(t, bg.DirtyRegions(), 1)
	assert.Len(t, res.node(t, "Group").DirtyRegions(), 1)
	assert.Empty(t, res.node(t, "Missing").DirtyRegions(), "a layer without its own data is not dirtied")
	assert.Len(t, res.doc.Image.Root.DirtyRegions(), 1)
}

func TestLoad_CloneLayer(t *testing.T) {
	doc := paintDoc(2)
	doc.Layers = append(doc.Layers, testutils.Layer{
		Name: "Copy", Filename: "layer2", NodeType: "clonelayer", CloneFrom: "Background",
		Masks: []testutils.Layer{{Name: "Hide", Filename: "mask1", NodeType: "transparencymask"}},
	})

	res := load(t, doc)
	require.NoError(t, res.err)

	clone := res.node(t, "Copy").(*domain.CloneLayer)
	assert.Same(t, res.node(t, "Background"), clone.Source)
	assert.Len(t, clone.DirtyRegions(), 1)
	assert.NotNil(t, res.node(t, "Hide").(*domain.TransparencyMask).Selection())
}

func TestLoad_ShapeLayer(t *testing.T) {
	shapeDoc := func(format string, content []byte) *testutils.Document {
		doc := testutils.NewDocument("scene", 2)
		doc.Layers = []testutils.Layer{{Name: "Vector", Filename: "layer1", NodeType: "shapelayer", Format: format}}
		if content != nil {
			doc.Put("layer1", loader.SuffixShapeLayer, content)
		}
		return doc
	}

	t.Run("Default Loader", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="4" height="4"/></svg>`)
		res := load(t, shapeDoc("", svg))
		require.NoError(t, res.err)
		assert.Equal(t, svg, res.node(t, "Vector").(*domain.ShapeLayer).Content)
	})

	t.Run("Malformed Content", func(t *testing.T) {
		res := load(t, shapeDoc("", []byte("<svg><rect></svg>")))
		assert.ErrorIs(t, res.err, domain.ErrMalformedData)
	})

	t.Run("Missing Content", func(t *testing.T) {
		res := load(t, shapeDoc("", nil))
		assert.ErrorIs(t, res.err, domain.ErrMissingEntry)
	})

	t.Run("Unknown Format", func(t *testing.T) {
		res := load(t, shapeDoc("text", []byte("<t/>")))
		assert.ErrorIs(t, res.err, domain.ErrUnsupportedExternalLayer)
	})

	t.Run("Registered Format", func(t *testing.T) {
		var gotLocation string
		custom := loader.ExternalLoaderFunc(func(ctx context.Context, st ports.Store, n *domain.ShapeLayer, location string) error {
			gotLocation = location
			return nil
		})
		res := load(t, shapeDoc("text", []byte("<t/>")), loader.WithExternalLoader("text", custom))
		require.NoError(t, res.err)
		assert.Equal(t, "scene/layers/layer1.shapelayer", gotLocation)
	})
}

func TestLoad_Hooks(t *testing.T) {
	doc := paintDoc(2)
	doc.Put("layer1", loader.SuffixICC, testutils.ICCProfile("RGB ", "sRGB"))

	var nodes []*domain.NodeEvent
	var entries []*domain.EntryEvent
	hooks := domain.LoadHooks{
		OnNodeLoaded: func(_ context.Context, e *domain.NodeEvent) { nodes = append(nodes, e) },
		OnEntryRead:  func(_ context.Context, e *domain.EntryEvent) { entries = append(entries, e) },
	}

	res := load(t, doc, loader.WithHooks(hooks))
	require.NoError(t, res.err)

	require.Len(t, nodes, 1)
	assert.Equal(t, "Background", nodes[0].NodeName)
	assert.Equal(t, domain.OutcomeLoaded, nodes[0].Outcome)
	assert.Equal(t, "scene", nodes[0].Document)

	require.Len(t, entries, 2)
	locations := []string{entries[0].Location, entries[1].Location}
	assert.True(t, slices.Contains(locations, "scene/layers/layer1.icc"))
	assert.Equal(t, res.loader.Report().BytesRead, int64(entries[0].Bytes+entries[1].Bytes))
}

func TestLoad_Cancelled(t *testing.T) {
	doc := paintDoc(2)
	parsed, err := manifest.Parse(doc.Maindoc(), colorspace.NewRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := loader.New(parsed.Image, doc.Store(), parsed.Paths, doc.Name, parsed.SyntaxVersion)
	err = l.Load(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, parsed.Image.FindByName("Background").(*domain.PaintLayer).PaintDevice().IsEmpty())
}

// shape is the structural view compared across loads.
type shape struct {
	Kind      string
	Name      string
	Selection string
	Pixels    bool
	Dirty     []image.Rectangle
	Children  []shape
}

func describe(n domain.Node) shape {
	s := shape{Kind: n.Kind().String(), Name: n.Name(), Dirty: n.DirtyRegions()}
	if sel, ok := n.(domain.Selectable); ok {
		switch {
		case sel.Selection() == nil:
			s.Selection = "none"
		case sel.Selection().HasPixelSelection():
			s.Selection = "pixel"
		default:
			s.Selection = "empty"
		}
	}
	if owner, ok := n.(domain.DeviceOwner); ok {
		s.Pixels = !owner.PaintDevice().IsEmpty()
	}
	for _, c := range n.Children() {
		s.Children = append(s.Children, describe(c))
	}
	return s
}

func TestLoad_RoundTripIsStable(t *testing.T) {
	build := func() *testutils.Document {
		doc := testutils.NewDocument("scene", 2)
		doc.Layers = []testutils.Layer{
			{Name: "Background", Filename: "layer1", NodeType: "paintlayer", Masks: []testutils.Layer{
				{Name: "Fade", Filename: "mask1", NodeType: "transparencymask"},
			}},
			{Name: "Group", Filename: "layer2", NodeType: "grouplayer", Layers: []testutils.Layer{
				{Name: "Levels", Filename: "layer3", NodeType: "adjustmentlayer", Filter: "levels"},
				{Name: "Copy", Filename: "layer4", NodeType: "clonelayer", CloneFrom: "Background"},
			}},
		}
		doc.Put("layer1", "", testutils.SolidTiles(4, 0x10))
		doc.Put("layer1", loader.SuffixICC, testutils.ICCProfile("RGB ", "sRGB"))
		doc.Put("mask1", loader.SuffixPixelSelection, testutils.SolidTiles(1, 0xff))
		doc.Put("layer3", loader.SuffixFilterConfig, testutils.FilterXML(t, 1, map[string]string{"gamma": "2.2"}))
		return doc
	}

	first := load(t, build())
	second := load(t, build())
	require.NoError(t, first.err)
	require.NoError(t, second.err)

	if diff := cmp.Diff(describe(first.doc.Image.Root), describe(second.doc.Image.Root)); diff != "" {
		t.Errorf("loads differ (-first +second):\n%s", diff)
	}
}

func TestNodeError(t *testing.T) {
	err := &loader.NodeError{Name: "Background", Kind: domain.KindPaintLayer, Location: "doc/layers/layer1", Err: domain.ErrMissingEntry}
	assert.True(t, strings.Contains(err.Error(), "paintlayer \"Background\" at doc/layers/layer1"))
	assert.ErrorIs(t, err, domain.ErrMissingEntry)
}

func TestLoad_MissingLegacyAdjustmentSelectionWarns(t *testing.T) {
	doc := adjustmentDoc(1)
	delete(doc.Entries, doc.Location("layer1", loader.SuffixLegacySelection))

	var buf bytes.Buffer
	res := load(t, doc, loader.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatText)))
	require.NoError(t, res.err)

	assert.True(t, res.node(t, "Levels").(*domain.AdjustmentLayer).Selection().IsEmpty())
	assert.Contains(t, buf.String(), "legacy adjustment selection missing")
	assert.NotContains(t, buf.String(), "level=ERROR")
}

var errBackendDown = errors.New("connection refused")

// unreachableStore fails every entry ending in suffix the way a remote archive
// does when its backend is down.
type unreachableStore struct {
	ports.Store
	suffix string
}

func (s unreachableStore) Open(ctx context.Context, path string) error {
	if strings.HasSuffix(path, s.suffix) {
		return errBackendDown
	}
	return s.Store.Open(ctx, path)
}

func (s unreachableStore) HasFile(ctx context.Context, path string) (bool, error) {
	if strings.HasSuffix(path, s.suffix) {
		return false, errBackendDown
	}
	return s.Store.HasFile(ctx, path)
}

func TestLoad_ArchiveErrorsOnOptionalEntriesFailNode(t *testing.T) {
	withMask := func() *testutils.Document {
		doc := paintDoc(2)
		doc.Layers[0].Masks = []testutils.Layer{{Name: "Mask", Filename: "mask1", NodeType: "selectionmask"}}
		return doc
	}

	tests := []struct {
		name   string
		doc    *testutils.Document
		suffix string
		failed string
	}{
		{"Profile", paintDoc(2), loader.SuffixICC, "Background"},
		{"Filter Configuration", adjustmentDoc(2), loader.SuffixFilterConfig, "Levels"},
		{"Pixel Selection", withMask(), loader.SuffixPixelSelection, "Mask"},
		{"Shape Selection", withMask(), loader.SuffixShapeSelection, "Mask"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := loadWith(t, tt.doc, func(st ports.Store) ports.Store {
				return unreachableStore{Store: st, suffix: tt.suffix}
			})
			assert.ErrorIs(t, res.err, errBackendDown)

			r, ok := res.loader.Report().Result(res.node(t, tt.failed).ID())
			require.True(t, ok)
			assert.Equal(t, domain.OutcomeFailed, r.Outcome)
			assert.Equal(t, 1, res.loader.Report().Failed())
		})
	}
}
