// Package manifest reads maindoc.xml, the tree description of a KRA archive,
// and builds the empty node tree the loader later fills.
package manifest

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/store"
)

const (
	// MaindocEntry holds the node tree description.
	MaindocEntry = "maindoc.xml"
	// MimetypeEntry holds the archive mime type.
	MimetypeEntry = "mimetype"
	// Mimetype is the expected content of MimetypeEntry.
	Mimetype = "application/x-krita"
	// DefaultSyntaxVersion applies when the DOC element carries no syntaxVersion.
	DefaultSyntaxVersion = 1
)

// ErrNotKRA is returned when the mimetype entry names another format.
var ErrNotKRA = errors.New("archive is not a KRA document")

// Document is the result of the tree-building pass.
type Document struct {
	SyntaxVersion int
	Editor        string
	Image         *domain.Image
	Paths         domain.PathMap
}

type xmlDoc struct {
	XMLName       xml.Name `xml:"DOC"`
	SyntaxVersion string   `xml:"syntaxVersion,attr"`
	Editor        string   `xml:"editor,attr"`
	Image         xmlImage `xml:"IMAGE"`
}

type xmlImage struct {
	Name       string     `xml:"name,attr"`
	Width      int        `xml:"width,attr"`
	Height     int        `xml:"height,attr"`
	ColorSpace string     `xml:"colorspacename,attr"`
	Layers     []xmlLayer `xml:"layers>layer"`
}

type xmlLayer struct {
	Name             string     `xml:"name,attr"`
	Filename         string     `xml:"filename,attr"`
	NodeType         string     `xml:"nodetype,attr"`
	ColorSpace       string     `xml:"colorspacename,attr"`
	FilterName       string     `xml:"filtername,attr"`
	FilterVersion    string     `xml:"filterversion,attr"`
	GeneratorName    string     `xml:"generatorname,attr"`
	GeneratorVersion string     `xml:"generatorversion,attr"`
	CloneFrom        string     `xml:"clonefrom,attr"`
	Format           string     `xml:"format,attr"`
	Active           string     `xml:"active,attr"`
	Masks            []xmlLayer `xml:"masks>mask"`
	Layers           []xmlLayer `xml:"layers>layer"`
}

// Read checks the mimetype entry (when present) and parses maindoc.xml through st.
func Read(ctx context.Context, st ports.Store, reg ports.ColorSpaceRegistry) (*Document, error) {
	hasMimetype, err := st.HasFile(ctx, MimetypeEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to look up mimetype: %w", err)
	}
	if hasMimetype {
		mt, err := store.ReadAll(ctx, st, MimetypeEntry)
		if err != nil {
			return nil, fmt.Errorf("failed to read mimetype: %w", err)
		}
		if got := strings.TrimSpace(string(mt)); got != Mimetype {
			return nil, fmt.Errorf("%w: mimetype %q", ErrNotKRA, got)
		}
	}
	data, err := store.ReadAll(ctx, st, MaindocEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MaindocEntry, err)
	}
	return Parse(data, reg)
}

// Parse builds the empty node tree and path mapping from maindoc.xml content.
func Parse(data []byte, reg ports.ColorSpaceRegistry) (*Document, error) {
	var doc xmlDoc
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v: %w", MaindocEntry, err, domain.ErrMalformedData)
	}

	version := DefaultSyntaxVersion
	if doc.SyntaxVersion != "" {
		v, err := strconv.Atoi(doc.SyntaxVersion)
		if err != nil {
			return nil, fmt.Errorf("bad syntaxVersion %q: %w", doc.SyntaxVersion, domain.ErrMalformedData)
		}
		version = v
	}

	if doc.Image.Width < 0 || doc.Image.Height < 0 {
		return nil, fmt.Errorf("negative image size %dx%d: %w", doc.Image.Width, doc.Image.Height, domain.ErrMalformedData)
	}
	csID := doc.Image.ColorSpace
	if csID == "" {
		csID = domain.RGBA8.ID
	}
	imageCS, err := reg.ColorSpace(csID, nil)
	if err != nil {
		return nil, fmt.Errorf("image color space: %w", err)
	}

	b := &builder{reg: reg, imageCS: imageCS, paths: domain.PathMap{}}
	img := domain.NewImage(doc.Image.Name, doc.Image.Width, doc.Image.Height, imageCS)
	for _, l := range doc.Image.Layers {
		n, err := b.build(l)
		if err != nil {
			return nil, err
		}
		img.Root.AddChild(n)
	}

	return &Document{
		SyntaxVersion: version,
		Editor:        doc.Editor,
		Image:         img,
		Paths:         b.paths,
	}, nil
}

type builder struct {
	reg     ports.ColorSpaceRegistry
	imageCS domain.ColorSpace
	paths   domain.PathMap
}

func (b *builder) build(l xmlLayer) (domain.Node, error) {
	kind, ok := domain.ParseNodeKind(l.NodeType)
	if !ok {
		return nil, fmt.Errorf("layer %q: nodetype %q: %w", l.Name, l.NodeType, domain.ErrUnknownNodeKind)
	}

	id := domain.NewNodeID()
	var n domain.Node
	switch kind {
	case domain.KindPaintLayer:
		cs, err := b.colorSpace(l)
		if err != nil {
			return nil, err
		}
		n = domain.NewPaintLayer(id, l.Name, cs)
	case domain.KindGroupLayer:
		n = domain.NewGroupLayer(id, l.Name)
	case domain.KindAdjustmentLayer:
		n = domain.NewAdjustmentLayer(id, l.Name, filterConfig(l.FilterName, l.FilterVersion))
	case domain.KindGeneratorLayer:
		cs, err := b.colorSpace(l)
		if err != nil {
			return nil, err
		}
		n = domain.NewGeneratorLayer(id, l.Name, cs, filterConfig(l.GeneratorName, l.GeneratorVersion))
	case domain.KindCloneLayer:
		n = domain.NewCloneLayer(id, l.Name, l.CloneFrom)
	case domain.KindShapeLayer:
		n = domain.NewShapeLayer(id, l.Name, l.Format)
	case domain.KindFilterMask:
		n = domain.NewFilterMask(id, l.Name, filterConfig(l.FilterName, l.FilterVersion))
	case domain.KindTransparencyMask:
		n = domain.NewTransparencyMask(id, l.Name)
	case domain.KindTransformationMask:
		n = domain.NewTransformationMask(id, l.Name)
	case domain.KindSelectionMask:
		m := domain.NewSelectionMask(id, l.Name)
		m.Active = l.Active == "1" || l.Active == "true"
		n = m
	}

	if l.Filename != "" {
		b.paths[id] = l.Filename
	}

	for _, m := range l.Masks {
		child, err := b.build(m)
		if err != nil {
			return nil, err
		}
		if !child.Kind().IsMask() {
			return nil, fmt.Errorf("layer %q: %s listed as mask: %w", l.Name, child.Kind(), domain.ErrMalformedData)
		}
		n.AddChild(child)
	}
	for _, sub := range l.Layers {
		if kind != domain.KindGroupLayer {
			return nil, fmt.Errorf("layer %q: only group layers have sublayers: %w", l.Name, domain.ErrMalformedData)
		}
		child, err := b.build(sub)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func (b *builder) colorSpace(l xmlLayer) (domain.ColorSpace, error) {
	if l.ColorSpace == "" {
		return b.imageCS, nil
	}
	cs, err := b.reg.ColorSpace(l.ColorSpace, nil)
	if err != nil {
		return domain.ColorSpace{}, fmt.Errorf("layer %q: %w", l.Name, err)
	}
	return cs, nil
}

func filterConfig(name, version string) *domain.FilterConfig {
	v, err := strconv.Atoi(version)
	if err != nil || v <= 0 {
		v = 1
	}
	return domain.NewFilterConfig(name, v)
}
