// Package dto holds the JSON shapes of loaded documents shared by the CLI and the HTTP service.
package dto

import (
	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/domain"
)

// Document is the JSON view of a loaded document.
type Document struct {
	ID            string       `json:"id,omitempty"`
	Name          string       `json:"name"`
	Editor        string       `json:"editor,omitempty"`
	SyntaxVersion int          `json:"syntax_version"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	ColorSpace    string       `json:"color_space"`
	Nodes         []Node       `json:"nodes"`
	Failed        int          `json:"failed"`
	LegacyMasks   int          `json:"legacy_masks,omitempty"`
	BytesRead     int64        `json:"bytes_read"`
	Limitations   []Limitation `json:"limitations,omitempty"`
}

// Node is the JSON view of one node and its children.
type Node struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Kind       string               `json:"kind"`
	Outcome    string               `json:"outcome,omitempty"`
	Error      string               `json:"error,omitempty"`
	ColorSpace string               `json:"color_space,omitempty"`
	Extent     *Rect                `json:"extent,omitempty"`
	Selection  string               `json:"selection,omitempty"`
	Filter     *domain.FilterConfig `json:"filter,omitempty"`
	CloneOf    string               `json:"clone_of,omitempty"`
	Children   []Node               `json:"children,omitempty"`
}

// Rect is an integer rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Limitation is data that was present but not loaded.
type Limitation struct {
	Node     string `json:"node"`
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// FromDocument builds the JSON view of doc.
func FromDocument(doc *strata.Document) Document {
	out := Document{
		Name:          doc.Name,
		Editor:        doc.Editor,
		SyntaxVersion: doc.SyntaxVersion,
		Width:         doc.Image.Width,
		Height:        doc.Image.Height,
		ColorSpace:    doc.Image.ColorSpace.String(),
		Nodes:         []Node{},
		Failed:        doc.Report.Failed(),
		LegacyMasks:   doc.Report.LegacyMasks,
		BytesRead:     doc.Report.BytesRead,
	}
	for _, c := range doc.Image.Root.Children() {
		out.Nodes = append(out.Nodes, fromNode(doc.Report, c))
	}
	for _, lim := range doc.Report.Limitations {
		out.Limitations = append(out.Limitations, Limitation{Node: lim.Name, Location: lim.Location, Reason: lim.Err.Error()})
	}
	return out
}

func fromNode(report *strata.Report, n domain.Node) Node {
	out := Node{ID: string(n.ID()), Name: n.Name(), Kind: n.Kind().String()}
	if res, ok := report.Result(n.ID()); ok {
		out.Outcome = res.Outcome.String()
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
	}

	if owner, ok := n.(domain.DeviceOwner); ok {
		dev := owner.PaintDevice()
		out.ColorSpace = dev.ColorSpace().String()
		if r := dev.Extent(); !r.Empty() {
			out.Extent = &Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
		}
	}
	if sel, ok := n.(domain.Selectable); ok && sel.Selection() != nil {
		switch {
		case sel.Selection().HasPixelSelection():
			out.Selection = "pixel"
		default:
			out.Selection = "empty"
		}
	}

	switch v := n.(type) {
	case *domain.AdjustmentLayer:
		out.Filter = v.Filter()
	case *domain.FilterMask:
		out.Filter = v.Filter()
	case *domain.GeneratorLayer:
		out.Filter = v.Generator()
	case *domain.CloneLayer:
		out.CloneOf = v.CopyFrom
	}

	for _, c := range n.Children() {
		out.Children = append(out.Children, fromNode(report, c))
	}
	return out
}
