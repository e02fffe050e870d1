package codec

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
)

// maxImagePixels bounds encoded image payloads, checked against the header
// before any pixel data is decoded.
const maxImagePixels = 1 << 26

// DecodeRaster decodes a device payload. Encoded images (PNG, JPEG) are
// recognised by their magic bytes and split into tiles; anything else is
// parsed as the tiled format.
func DecodeRaster(data []byte, pixelSize int) (*domain.TileSet, error) {
	if filetype.IsImage(data) {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, malformed("image payload: %v", err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
			return nil, malformed("image payload %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, malformed("image payload: %v", err)
		}
		return TilesFromImage(img, pixelSize, domain.DefaultTileSize)
	}
	return DecodeTiles(data, pixelSize)
}

// TilesFromImage splits img into tiles of the given pixel size.
// 4 bytes: R,G,B,A. 2 bytes: gray,alpha. 1 byte: alpha.
// Fully transparent tiles are not stored.
func TilesFromImage(img image.Image, pixelSize, tileSize int) (*domain.TileSet, error) {
	if pixelSize != 1 && pixelSize != 2 && pixelSize != 4 {
		return nil, malformed("cannot convert image to %d bytes per pixel", pixelSize)
	}
	b := img.Bounds()
	aligned := image.Rect(
		floorTo(b.Min.X, tileSize), floorTo(b.Min.Y, tileSize),
		ceilTo(b.Max.X, tileSize), ceilTo(b.Max.Y, tileSize),
	)
	canvas := image.NewNRGBA(aligned)
	draw.Draw(canvas, b, img, b.Min, draw.Src)

	ts := domain.NewTileSet(tileSize, tileSize, pixelSize)
	for ty := aligned.Min.Y; ty < aligned.Max.Y; ty += tileSize {
		for tx := aligned.Min.X; tx < aligned.Max.X; tx += tileSize {
			tile := make([]byte, ts.TileBytes())
			opaque := false
			for y := 0; y < tileSize; y++ {
				for x := 0; x < tileSize; x++ {
					c := canvas.NRGBAAt(tx+x, ty+y)
					if c.A != 0 {
						opaque = true
					}
					writePixel(tile[(y*tileSize+x)*pixelSize:], c, pixelSize)
				}
			}
			if !opaque {
				continue
			}
			if err := ts.Put(image.Pt(tx, ty), tile); err != nil {
				return nil, err
			}
		}
	}
	return ts, nil
}

func writePixel(dst []byte, c color.NRGBA, pixelSize int) {
	switch pixelSize {
	case 4:
		dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, c.A
	case 2:
		gray := color.GrayModel.Convert(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}).(color.Gray)
		dst[0], dst[1] = gray.Y, c.A
	case 1:
		dst[0] = c.A
	}
}

func floorTo(v, step int) int {
	return v - mod(v, step)
}

func ceilTo(v, step int) int {
	if m := mod(v, step); m != 0 {
		return v + step - m
	}
	return v
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
