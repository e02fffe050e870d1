package domain

import "image"

// Image is the document canvas owning the node tree.
type Image struct {
	Name       string
	Width      int
	Height     int
	ColorSpace ColorSpace
	Root       *GroupLayer
}

// NewImage creates an image with an empty root group.
func NewImage(name string, width, height int, cs ColorSpace) *Image {
	return &Image{
		Name:       name,
		Width:      width,
		Height:     height,
		ColorSpace: cs,
		Root:       NewGroupLayer("", "root"),
	}
}

// Bounds is the full canvas rectangle.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// Walk visits every node below the root depth-first, parents before children.
// Returning false from fn stops the walk.
func (img *Image) Walk(fn func(n Node, depth int) bool) {
	var walk func(n Node, depth int) bool
	walk = func(n Node, depth int) bool {
		for _, c := range n.Children() {
			if !fn(c, depth) {
				return false
			}
			if !walk(c, depth+1) {
				return false
			}
		}
		return true
	}
	walk(img.Root, 0)
}

// Find returns the node with the given id.
func (img *Image) Find(id NodeID) Node {
	var found Node
	img.Walk(func(n Node, _ int) bool {
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByName returns the first node with the given name.
func (img *Image) FindByName(name string) Node {
	var found Node
	img.Walk(func(n Node, _ int) bool {
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}
