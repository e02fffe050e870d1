package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// TileFormatVersion is the only tiled payload version understood.
const TileFormatVersion = 2

// CompressionNone marks tiles stored as raw interleaved pixels.
const CompressionNone = "NONE"

// maxTileEdge bounds header values so a corrupt header cannot trigger huge allocations.
const maxTileEdge = 4096

// DecodeTiles parses a tiled raster payload. pixelSize is the byte size
// expected by the target device; a mismatch is reported as malformed data.
func DecodeTiles(data []byte, pixelSize int) (*domain.TileSet, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	header := map[string]int{}
	for _, key := range []string{"VERSION", "TILEWIDTH", "TILEHEIGHT", "PIXELSIZE", "DATA"} {
		v, err := readHeaderLine(r, key)
		if err != nil {
			return nil, err
		}
		header[key] = v
	}

	if header["VERSION"] != TileFormatVersion {
		return nil, malformed("unsupported tile format version %d", header["VERSION"])
	}
	tw, th := header["TILEWIDTH"], header["TILEHEIGHT"]
	if tw <= 0 || th <= 0 || tw > maxTileEdge || th > maxTileEdge {
		return nil, malformed("invalid tile size %dx%d", tw, th)
	}
	if header["PIXELSIZE"] != pixelSize {
		return nil, malformed("pixel size %d, device expects %d", header["PIXELSIZE"], pixelSize)
	}
	count := header["DATA"]
	if count < 0 {
		return nil, malformed("negative tile count")
	}

	ts := domain.NewTileSet(tw, th, pixelSize)
	for i := 0; i < count; i++ {
		line, err := readLine(r)
		if err != nil {
			return nil, malformed("tile %d header: %v", i, err)
		}
		origin, compression, size, err := parseTileHeader(line)
		if err != nil {
			return nil, malformed("tile %d header %q: %v", i, line, err)
		}
		if compression != CompressionNone {
			return nil, malformed("tile %d uses unsupported compression %q", i, compression)
		}
		if size != ts.TileBytes() {
			return nil, malformed("tile %d has %d bytes, want %d", i, size, ts.TileBytes())
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, malformed("tile %d body: %v", i, err)
		}
		if err := ts.Put(origin, buf); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readHeaderLine(r *bufio.Reader, key string) (int, error) {
	line, err := readLine(r)
	if err != nil {
		return 0, malformed("missing %s header", key)
	}
	name, value, ok := strings.Cut(line, " ")
	if !ok || name != key {
		return 0, malformed("expected %s header, got %q", key, line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, malformed("%s header: %v", key, err)
	}
	return n, nil
}

func parseTileHeader(line string) (image.Point, string, int, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return image.Point{}, "", 0, fmt.Errorf("want 4 fields, got %d", len(parts))
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return image.Point{}, "", 0, err
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return image.Point{}, "", 0, err
	}
	size, err := strconv.Atoi(parts[3])
	if err != nil {
		return image.Point{}, "", 0, err
	}
	return image.Pt(x, y), parts[2], size, nil
}

// EncodeTiles writes ts in the tiled payload format, tiles in row-major order.
func EncodeTiles(ts *domain.TileSet) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "VERSION %d\n", TileFormatVersion)
	fmt.Fprintf(&buf, "TILEWIDTH %d\n", ts.TileWidth)
	fmt.Fprintf(&buf, "TILEHEIGHT %d\n", ts.TileHeight)
	fmt.Fprintf(&buf, "PIXELSIZE %d\n", ts.PixelSize)
	fmt.Fprintf(&buf, "DATA %d\n", len(ts.Tiles))
	for _, origin := range ts.Origins() {
		tile := ts.Tiles[origin]
		fmt.Fprintf(&buf, "%d,%d,%s,%d\n", origin.X, origin.Y, CompressionNone, len(tile))
		buf.Write(tile)
	}
	return buf.Bytes()
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrMalformedData)
}
