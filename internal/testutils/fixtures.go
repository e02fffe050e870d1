// Package testutils builds KRA archive fixtures for tests.
package testutils

import (
	"encoding/xml"
	"image"
	"strconv"
	"testing"

	"github.com/aretw0/strata/internal/codec"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/store"
	"github.com/stretchr/testify/require"
)

// Layer describes one node of a fixture document.
type Layer struct {
	Name       string  `xml:"name,attr"`
	Filename   string  `xml:"filename,attr,omitempty"`
	NodeType   string  `xml:"nodetype,attr"`
	ColorSpace string  `xml:"colorspacename,attr,omitempty"`
	Filter     string  `xml:"filtername,attr,omitempty"`
	Generator  string  `xml:"generatorname,attr,omitempty"`
	CloneFrom  string  `xml:"clonefrom,attr,omitempty"`
	Format     string  `xml:"format,attr,omitempty"`
	Active     string  `xml:"active,attr,omitempty"`
	Masks      []Layer `xml:"masks>mask,omitempty"`
	Layers     []Layer `xml:"layers>layer,omitempty"`
}

// Document describes a fixture archive.
type Document struct {
	Name          string
	Width         int
	Height        int
	ColorSpace    string
	SyntaxVersion int // zero omits the attribute
	Layers        []Layer
	Entries       map[string][]byte
}

// NewDocument returns a 64x64 RGBA document fixture.
func NewDocument(name string, syntaxVersion int) *Document {
	return &Document{
		Name:          name,
		Width:         64,
		Height:        64,
		ColorSpace:    "RGBA",
		SyntaxVersion: syntaxVersion,
		Entries:       map[string][]byte{},
	}
}

// Location is the archive path of a layer entry.
func (d *Document) Location(filename, suffix string) string {
	return d.Name + "/layers/" + filename + suffix
}

// Put stores an entry under the location of filename.
func (d *Document) Put(filename, suffix string, data []byte) *Document {
	d.Entries[d.Location(filename, suffix)] = data
	return d
}

// Maindoc renders maindoc.xml.
func (d *Document) Maindoc() []byte {
	type imageXML struct {
		Name       string  `xml:"name,attr"`
		Width      int     `xml:"width,attr"`
		Height     int     `xml:"height,attr"`
		ColorSpace string  `xml:"colorspacename,attr,omitempty"`
		Layers     []Layer `xml:"layers>layer"`
	}
	type docXML struct {
		XMLName       xml.Name `xml:"DOC"`
		SyntaxVersion string   `xml:"syntaxVersion,attr,omitempty"`
		Editor        string   `xml:"editor,attr"`
		Image         imageXML `xml:"IMAGE"`
	}

	doc := docXML{
		Editor: "Krita",
		Image: imageXML{
			Name:       d.Name,
			Width:      d.Width,
			Height:     d.Height,
			ColorSpace: d.ColorSpace,
			Layers:     d.Layers,
		},
	}
	if d.SyntaxVersion != 0 {
		doc.SyntaxVersion = strconv.Itoa(d.SyntaxVersion)
	}
	out, err := xml.MarshalIndent(doc, "", " ")
	if err != nil {
		panic(err)
	}
	return append([]byte(xml.Header), out...)
}

// Files returns every archive entry, including mimetype and maindoc.xml.
func (d *Document) Files() map[string][]byte {
	files := map[string][]byte{
		"mimetype":    []byte("application/x-krita"),
		"maindoc.xml": d.Maindoc(),
	}
	for k, v := range d.Entries {
		files[k] = v
	}
	return files
}

// Archive returns an in-memory archive of the document.
func (d *Document) Archive() *memory.Archive {
	return memory.NewArchive(d.Files())
}

// Store returns a protocol store over a fresh in-memory archive of the document.
func (d *Document) Store() *store.Store {
	return store.New(d.Archive())
}

// SolidTiles encodes tiles of pixelSize bytes per pixel filled with value,
// one tile per origin (the origin tile when none are given).
func SolidTiles(pixelSize int, value byte, origins ...image.Point) []byte {
	if len(origins) == 0 {
		origins = []image.Point{{}}
	}
	ts := domain.NewTileSet(domain.DefaultTileSize, domain.DefaultTileSize, pixelSize)
	for _, o := range origins {
		data := make([]byte, ts.TileBytes())
		for i := range data {
			data[i] = value
		}
		if err := ts.Put(o, data); err != nil {
			panic(err)
		}
	}
	return codec.EncodeTiles(ts)
}

// FilterXML encodes filter parameters in the legacy XML format.
func FilterXML(t *testing.T, version int, params map[string]string) []byte {
	t.Helper()
	cfg := domain.NewFilterConfig("", version)
	for k, v := range params {
		cfg.Set(k, v)
	}
	data, err := codec.EncodeFilterConfig(cfg)
	require.NoError(t, err)
	return data
}
