package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// ColorSpace describes how the raw samples of a paint device are interpreted.
type ColorSpace struct {
	// ID names the color model family, e.g. "RGBA".
	ID string `json:"id"`
	// PixelSize is the number of bytes per pixel.
	PixelSize int `json:"pixel_size"`
	// Profile is the embedded profile, nil for the family default.
	Profile *Profile `json:"profile,omitempty"`
}

// Built-in color space families, all 8 bits per channel.
var (
	RGBA8  = ColorSpace{ID: "RGBA", PixelSize: 4}
	GRAYA8 = ColorSpace{ID: "GRAYA", PixelSize: 2}
	ALPHA8 = ColorSpace{ID: "ALPHA", PixelSize: 1}
)

// Equal reports whether both color spaces have the same family and profile bytes.
func (cs ColorSpace) Equal(other ColorSpace) bool {
	if cs.ID != other.ID || cs.PixelSize != other.PixelSize {
		return false
	}
	if cs.Profile == nil || other.Profile == nil {
		return cs.Profile == other.Profile
	}
	return bytes.Equal(cs.Profile.Data, other.Profile.Data)
}

func (cs ColorSpace) String() string {
	if cs.Profile != nil && cs.Profile.Name != "" {
		return cs.ID + " (" + cs.Profile.Name + ")"
	}
	return cs.ID
}

const iccHeaderSize = 128

// Profile is an ICC color profile.
type Profile struct {
	Name string `json:"name"`
	// Class is the profile/device class signature, e.g. "mntr".
	Class string `json:"class"`
	// DataColorSpace is the data color space signature, e.g. "RGB " or "GRAY".
	DataColorSpace string `json:"data_color_space"`
	Data           []byte `json:"-"`
}

// ParseProfile validates an ICC header and extracts its description.
// The returned profile keeps its own copy of data.
func ParseProfile(data []byte) (*Profile, error) {
	if len(data) < iccHeaderSize {
		return nil, fmt.Errorf("icc profile too short (%d bytes): %w", len(data), ErrMalformedData)
	}
	if string(data[36:40]) != "acsp" {
		return nil, fmt.Errorf("icc profile missing acsp signature: %w", ErrMalformedData)
	}
	declared := binary.BigEndian.Uint32(data[0:4])
	if uint64(declared) > uint64(len(data)) {
		return nil, fmt.Errorf("icc profile declares %d bytes, has %d: %w", declared, len(data), ErrMalformedData)
	}

	p := &Profile{
		Class:          string(data[12:16]),
		DataColorSpace: string(data[16:20]),
		Data:           append([]byte(nil), data...),
	}
	p.Name = profileDescription(data)
	return p, nil
}

// profileDescription reads the 'desc' tag. Unknown tag types yield an empty name.
func profileDescription(data []byte) string {
	if len(data) < iccHeaderSize+4 {
		return ""
	}
	count := uint64(binary.BigEndian.Uint32(data[iccHeaderSize:]))
	if room := uint64(len(data)-iccHeaderSize-4) / 12; count > room {
		count = room
	}
	for i := uint64(0); i < count; i++ {
		entry := iccHeaderSize + 4 + int(i)*12
		if string(data[entry:entry+4]) != "desc" {
			continue
		}
		tag, ok := span(data, binary.BigEndian.Uint32(data[entry+4:]), binary.BigEndian.Uint32(data[entry+8:]))
		if !ok || len(tag) < 12 {
			return ""
		}
		switch string(tag[0:4]) {
		case "desc":
			text, ok := span(tag, 12, binary.BigEndian.Uint32(tag[8:12]))
			if !ok {
				return ""
			}
			return strings.TrimRight(string(text), "\x00")
		case "mluc":
			if len(tag) < 28 {
				return ""
			}
			text, ok := span(tag, binary.BigEndian.Uint32(tag[24:28]), binary.BigEndian.Uint32(tag[20:24]))
			if !ok {
				return ""
			}
			return decodeUTF16BE(text)
		}
		return ""
	}
	return ""
}

// span returns buf[off:off+n], or false when the range falls outside buf.
func span(buf []byte, off, n uint32) ([]byte, bool) {
	end := uint64(off) + uint64(n)
	if end > uint64(len(buf)) {
		return nil, false
	}
	return buf[off:end], true
}

func decodeUTF16BE(b []byte) string {
	var sb strings.Builder
	for i := 0; i+1 < len(b); i += 2 {
		r := rune(binary.BigEndian.Uint16(b[i:]))
		if r == 0 {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
