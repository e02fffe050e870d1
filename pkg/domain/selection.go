package domain

// ShapeSelection is the vector component of a selection.
// Its content is kept as the raw archive payload.
type ShapeSelection struct {
	Raw []byte
}

// Selection defines an editable region made of an optional pixel component
// and an optional shape component.
type Selection struct {
	Pixel *PaintDevice
	Shape *ShapeSelection
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// GetOrCreatePixelSelection returns the pixel component, creating an empty ALPHA device if needed.
func (s *Selection) GetOrCreatePixelSelection() *PaintDevice {
	if s.Pixel == nil {
		s.Pixel = NewPaintDevice(ALPHA8)
	}
	return s.Pixel
}

// HasPixelSelection reports whether a non-empty pixel component is present.
func (s *Selection) HasPixelSelection() bool {
	return s.Pixel != nil && !s.Pixel.IsEmpty()
}

// IsEmpty reports whether neither component holds data.
func (s *Selection) IsEmpty() bool {
	return !s.HasPixelSelection() && s.Shape == nil
}
