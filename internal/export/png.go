// Package export writes node pixels as PNG images.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/aretw0/strata/pkg/domain"
	"golang.org/x/image/draw"
)

// ErrNoPixels is returned for nodes without pixel content.
var ErrNoPixels = errors.New("node has no pixel content")

// Device returns the pixel content of a node: its paint device, or the pixel
// component of its selection for masks and adjustment layers.
func Device(n domain.Node) (*domain.PaintDevice, error) {
	if owner, ok := n.(domain.DeviceOwner); ok {
		return owner.PaintDevice(), nil
	}
	if sel, ok := n.(domain.Selectable); ok && sel.Selection() != nil && sel.Selection().HasPixelSelection() {
		return sel.Selection().Pixel, nil
	}
	return nil, fmt.Errorf("%s %q: %w", n.Kind(), n.Name(), ErrNoPixels)
}

// Image renders a node to an image, scaled to width when width > 0 (aspect kept).
func Image(n domain.Node, width int) (image.Image, error) {
	dev, err := Device(n)
	if err != nil {
		return nil, err
	}
	src := dev.Image()
	b := src.Bounds()
	if width <= 0 || b.Dx() == 0 || width == b.Dx() {
		return src, nil
	}

	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, nil
}

// WritePNG encodes the node's pixels as PNG.
func WritePNG(w io.Writer, n domain.Node, width int) error {
	img, err := Image(n, width)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
