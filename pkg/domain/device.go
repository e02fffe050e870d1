package domain

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"maps"
	"slices"
)

// DefaultTileSize is the edge length of a tile in pixels.
const DefaultTileSize = 64

// TileSet is a sparse grid of equally sized raw tiles.
// Tiles are keyed by the pixel coordinate of their top-left corner.
type TileSet struct {
	TileWidth  int
	TileHeight int
	PixelSize  int
	Tiles      map[image.Point][]byte
}

// NewTileSet creates an empty tile set.
func NewTileSet(tileWidth, tileHeight, pixelSize int) *TileSet {
	return &TileSet{
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		PixelSize:  pixelSize,
		Tiles:      make(map[image.Point][]byte),
	}
}

// TileBytes is the expected length of every tile.
func (ts *TileSet) TileBytes() int {
	return ts.TileWidth * ts.TileHeight * ts.PixelSize
}

// Put stores a tile at origin after validating its length and alignment.
func (ts *TileSet) Put(origin image.Point, data []byte) error {
	if len(data) != ts.TileBytes() {
		return fmt.Errorf("tile at %v has %d bytes, want %d: %w", origin, len(data), ts.TileBytes(), ErrMalformedData)
	}
	if mod(origin.X, ts.TileWidth) != 0 || mod(origin.Y, ts.TileHeight) != 0 {
		return fmt.Errorf("tile origin %v not aligned to %dx%d grid: %w", origin, ts.TileWidth, ts.TileHeight, ErrMalformedData)
	}
	ts.Tiles[origin] = data
	return nil
}

// Origins returns tile origins in row-major order.
func (ts *TileSet) Origins() []image.Point {
	origins := slices.Collect(maps.Keys(ts.Tiles))
	slices.SortFunc(origins, func(a, b image.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return origins
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// PaintDevice is a raster buffer bound to a color space.
type PaintDevice struct {
	cs           ColorSpace
	tiles        *TileSet
	disconnected bool
}

// NewPaintDevice creates an empty device.
func NewPaintDevice(cs ColorSpace) *PaintDevice {
	return &PaintDevice{
		cs:    cs,
		tiles: NewTileSet(DefaultTileSize, DefaultTileSize, cs.PixelSize),
	}
}

func (d *PaintDevice) ColorSpace() ColorSpace { return d.cs }

// SetColorSpace rebinds the device to cs without touching its samples.
// The pixel size of both color spaces must match.
func (d *PaintDevice) SetColorSpace(cs ColorSpace) error {
	if cs.PixelSize != d.cs.PixelSize {
		return fmt.Errorf("cannot rebind %s (%d bytes/pixel) to %s (%d bytes/pixel)", d.cs.ID, d.cs.PixelSize, cs.ID, cs.PixelSize)
	}
	d.cs = cs
	return nil
}

// SetTiles replaces the device content.
func (d *PaintDevice) SetTiles(ts *TileSet) error {
	if ts.PixelSize != d.cs.PixelSize {
		return fmt.Errorf("tile pixel size %d does not match %s pixel size %d: %w", ts.PixelSize, d.cs.ID, d.cs.PixelSize, ErrMalformedData)
	}
	d.tiles = ts
	d.disconnected = false
	return nil
}

// Tiles exposes the underlying tile set.
func (d *PaintDevice) Tiles() *TileSet { return d.tiles }

// Disconnect drops any content, leaving an empty device.
func (d *PaintDevice) Disconnect() {
	d.tiles = NewTileSet(DefaultTileSize, DefaultTileSize, d.cs.PixelSize)
	d.disconnected = true
}

// Disconnected reports whether the content was discarded after a failed read.
func (d *PaintDevice) Disconnected() bool { return d.disconnected }

// IsEmpty reports whether the device holds no tiles.
func (d *PaintDevice) IsEmpty() bool { return len(d.tiles.Tiles) == 0 }

// Extent is the union of all tile rectangles.
func (d *PaintDevice) Extent() image.Rectangle {
	var r image.Rectangle
	for origin := range d.tiles.Tiles {
		r = r.Union(image.Rect(origin.X, origin.Y, origin.X+d.tiles.TileWidth, origin.Y+d.tiles.TileHeight))
	}
	return r
}

// Pixel returns the raw bytes at (x, y). Unset pixels are all zero.
func (d *PaintDevice) Pixel(x, y int) []byte {
	ts := d.tiles
	origin := image.Pt(x-mod(x, ts.TileWidth), y-mod(y, ts.TileHeight))
	out := make([]byte, ts.PixelSize)
	tile, ok := ts.Tiles[origin]
	if !ok {
		return out
	}
	off := ((y-origin.Y)*ts.TileWidth + (x - origin.X)) * ts.PixelSize
	copy(out, tile[off:off+ts.PixelSize])
	return out
}

// SameSamples reports whether both devices hold bit-identical tiles.
func (d *PaintDevice) SameSamples(other *PaintDevice) bool {
	a, b := d.tiles, other.tiles
	if a.TileWidth != b.TileWidth || a.TileHeight != b.TileHeight || a.PixelSize != b.PixelSize {
		return false
	}
	return maps.EqualFunc(a.Tiles, b.Tiles, bytes.Equal)
}

// Clone returns a deep copy.
func (d *PaintDevice) Clone() *PaintDevice {
	ts := NewTileSet(d.tiles.TileWidth, d.tiles.TileHeight, d.tiles.PixelSize)
	for k, v := range d.tiles.Tiles {
		ts.Tiles[k] = append([]byte(nil), v...)
	}
	return &PaintDevice{cs: d.cs, tiles: ts, disconnected: d.disconnected}
}

// Image converts the device extent into a standard library image.
// RGBA and GRAYA devices yield *image.NRGBA, ALPHA devices *image.Alpha.
func (d *PaintDevice) Image() image.Image {
	r := d.Extent()
	switch d.cs.ID {
	case ALPHA8.ID:
		img := image.NewAlpha(r)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetAlpha(x, y, color.Alpha{A: d.Pixel(x, y)[0]})
			}
		}
		return img
	default:
		img := image.NewNRGBA(r)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, d.nrgba(d.Pixel(x, y)))
			}
		}
		return img
	}
}

func (d *PaintDevice) nrgba(px []byte) color.NRGBA {
	switch len(px) {
	case 4:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	case 2:
		return color.NRGBA{R: px[0], G: px[0], B: px[0], A: px[1]}
	case 1:
		return color.NRGBA{R: px[0], G: px[0], B: px[0], A: 0xff}
	}
	return color.NRGBA{}
}
