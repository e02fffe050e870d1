package domain

// NodeKind enumerates the node variants of a document tree.
type NodeKind int

const (
	KindPaintLayer NodeKind = iota
	KindGroupLayer
	KindAdjustmentLayer
	KindGeneratorLayer
	KindCloneLayer
	KindShapeLayer // external layer with its own loader
	KindFilterMask
	KindTransparencyMask
	KindTransformationMask
	KindSelectionMask
)

func (k NodeKind) String() string {
	switch k {
	case KindPaintLayer:
		return "paintlayer"
	case KindGroupLayer:
		return "grouplayer"
	case KindAdjustmentLayer:
		return "adjustmentlayer"
	case KindGeneratorLayer:
		return "generatorlayer"
	case KindCloneLayer:
		return "clonelayer"
	case KindShapeLayer:
		return "shapelayer"
	case KindFilterMask:
		return "filtermask"
	case KindTransparencyMask:
		return "transparencymask"
	case KindTransformationMask:
		return "transformationmask"
	case KindSelectionMask:
		return "selectionmask"
	default:
		return "unknown"
	}
}

// ParseNodeKind maps a manifest nodetype attribute to a NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	for k := KindPaintLayer; k <= KindSelectionMask; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// IsMask reports whether nodes of this kind are masks (attached below a layer).
func (k NodeKind) IsMask() bool {
	return k >= KindFilterMask && k <= KindSelectionMask
}
