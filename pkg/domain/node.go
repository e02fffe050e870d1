package domain

import (
	"image"

	"github.com/google/uuid"
)

// NodeID is the stable identity of a node, used to look up its archive path.
type NodeID string

// NewNodeID returns a fresh random identity.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Node is an element of the document tree.
// The set of implementations is closed: only the variants in this package satisfy it.
type Node interface {
	ID() NodeID
	Name() string
	Kind() NodeKind

	// Children returns the direct children in stacking order (first is bottom-most).
	Children() []Node
	FirstChild() Node
	AddChild(child Node)
	// InsertChild inserts child before the given sibling. A nil or unknown
	// sibling appends the child at the end.
	InsertChild(child, before Node)

	// SetDirty records a region that needs recomposition.
	SetDirty(r image.Rectangle)
	DirtyRegions() []image.Rectangle

	node() // seals the interface
}

// Selectable is implemented by nodes that own a selection.
type Selectable interface {
	Node
	Selection() *Selection
	SetSelection(s *Selection)
}

// DeviceOwner is implemented by nodes that own a paint device.
type DeviceOwner interface {
	Node
	PaintDevice() *PaintDevice
}

type nodeBase struct {
	id       NodeID
	name     string
	children []Node
	dirty    []image.Rectangle
}

func newBase(id NodeID, name string) nodeBase {
	if id == "" {
		id = NewNodeID()
	}
	return nodeBase{id: id, name: name}
}

func (n *nodeBase) ID() NodeID       { return n.id }
func (n *nodeBase) Name() string     { return n.name }
func (n *nodeBase) Children() []Node { return n.children }
func (n *nodeBase) node()            {}

func (n *nodeBase) FirstChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *nodeBase) AddChild(child Node) {
	n.children = append(n.children, child)
}

func (n *nodeBase) InsertChild(child, before Node) {
	if before != nil {
		for i, c := range n.children {
			if c == before {
				n.children = append(n.children[:i], append([]Node{child}, n.children[i:]...)...)
				return
			}
		}
	}
	n.children = append(n.children, child)
}

func (n *nodeBase) SetDirty(r image.Rectangle) {
	n.dirty = append(n.dirty, r)
}

func (n *nodeBase) DirtyRegions() []image.Rectangle {
	return n.dirty
}

// selectionHolder backs every variant that owns a selection.
type selectionHolder struct {
	selection *Selection
}

func (s *selectionHolder) Selection() *Selection { return s.selection }

// SetSelection assigns the selection. A nil selection is replaced by an empty one
// so that an assigned selection always exists.
func (s *selectionHolder) SetSelection(sel *Selection) {
	if sel == nil {
		sel = NewSelection()
	}
	s.selection = sel
}

// PaintLayer holds raster content in its own paint device.
type PaintLayer struct {
	nodeBase
	device *PaintDevice
}

// NewPaintLayer creates an empty paint layer whose device uses cs.
func NewPaintLayer(id NodeID, name string, cs ColorSpace) *PaintLayer {
	return &PaintLayer{nodeBase: newBase(id, name), device: NewPaintDevice(cs)}
}

func (l *PaintLayer) Kind() NodeKind             { return KindPaintLayer }
func (l *PaintLayer) PaintDevice() *PaintDevice { return l.device }

// GroupLayer composites its children.
type GroupLayer struct {
	nodeBase
}

func NewGroupLayer(id NodeID, name string) *GroupLayer {
	return &GroupLayer{nodeBase: newBase(id, name)}
}

func (l *GroupLayer) Kind() NodeKind { return KindGroupLayer }

// AdjustmentLayer applies a filter to everything below it, limited by its selection.
type AdjustmentLayer struct {
	nodeBase
	selectionHolder
	filter *FilterConfig
}

func NewAdjustmentLayer(id NodeID, name string, filter *FilterConfig) *AdjustmentLayer {
	if filter == nil {
		filter = NewFilterConfig("", 1)
	}
	return &AdjustmentLayer{nodeBase: newBase(id, name), filter: filter}
}

func (l *AdjustmentLayer) Kind() NodeKind        { return KindAdjustmentLayer }
func (l *AdjustmentLayer) Filter() *FilterConfig { return l.filter }

// GeneratorLayer renders procedural content into its own paint device.
type GeneratorLayer struct {
	nodeBase
	selectionHolder
	device    *PaintDevice
	generator *FilterConfig
}

func NewGeneratorLayer(id NodeID, name string, cs ColorSpace, generator *FilterConfig) *GeneratorLayer {
	if generator == nil {
		generator = NewFilterConfig("", 1)
	}
	return &GeneratorLayer{nodeBase: newBase(id, name), device: NewPaintDevice(cs), generator: generator}
}

func (l *GeneratorLayer) Kind() NodeKind            { return KindGeneratorLayer }
func (l *GeneratorLayer) PaintDevice() *PaintDevice { return l.device }
func (l *GeneratorLayer) Generator() *FilterConfig  { return l.generator }

// CloneLayer mirrors another layer and has no pixel data of its own.
type CloneLayer struct {
	nodeBase
	// CopyFrom is the name of the layer being cloned.
	CopyFrom string
	// Source is resolved after loading; nil when CopyFrom names no layer.
	Source Node
}

func NewCloneLayer(id NodeID, name, copyFrom string) *CloneLayer {
	return &CloneLayer{nodeBase: newBase(id, name), CopyFrom: copyFrom}
}

func (l *CloneLayer) Kind() NodeKind { return KindCloneLayer }

// DefaultShapeFormat is the external format of vector shape layers.
const DefaultShapeFormat = "shape"

// ShapeLayer is an external layer whose content is loaded by a format-specific loader.
type ShapeLayer struct {
	nodeBase
	// Format selects the external loader.
	Format  string
	Content []byte
}

func NewShapeLayer(id NodeID, name, format string) *ShapeLayer {
	if format == "" {
		format = DefaultShapeFormat
	}
	return &ShapeLayer{nodeBase: newBase(id, name), Format: format}
}

func (l *ShapeLayer) Kind() NodeKind { return KindShapeLayer }

// FilterMask applies a filter to its parent layer inside its selection.
type FilterMask struct {
	nodeBase
	selectionHolder
	filter *FilterConfig
}

func NewFilterMask(id NodeID, name string, filter *FilterConfig) *FilterMask {
	if filter == nil {
		filter = NewFilterConfig("", 1)
	}
	return &FilterMask{nodeBase: newBase(id, name), filter: filter}
}

func (m *FilterMask) Kind() NodeKind        { return KindFilterMask }
func (m *FilterMask) Filter() *FilterConfig { return m.filter }

// TransparencyMask limits the opacity of its parent layer.
type TransparencyMask struct {
	nodeBase
	selectionHolder
}

func NewTransparencyMask(id NodeID, name string) *TransparencyMask {
	return &TransparencyMask{nodeBase: newBase(id, name)}
}

func (m *TransparencyMask) Kind() NodeKind { return KindTransparencyMask }

// TransformationMask transforms its parent layer inside its selection.
type TransformationMask struct {
	nodeBase
	selectionHolder
}

func NewTransformationMask(id NodeID, name string) *TransformationMask {
	return &TransformationMask{nodeBase: newBase(id, name)}
}

func (m *TransformationMask) Kind() NodeKind { return KindTransformationMask }

// SelectionMask stores a saved selection for its parent layer.
type SelectionMask struct {
	nodeBase
	selectionHolder
	Active bool
}

func NewSelectionMask(id NodeID, name string) *SelectionMask {
	return &SelectionMask{nodeBase: newBase(id, name)}
}

func (m *SelectionMask) Kind() NodeKind { return KindSelectionMask }
