package loader

import (
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
)

// LayersDir is the archive directory holding per-node entries.
const LayersDir = "layers"

// Entry suffixes appended to a node location.
const (
	SuffixICC             = ".icc"
	SuffixLegacyMask      = ".mask"
	SuffixLegacySelection = ".selection"
	SuffixFilterConfig    = ".filterconfig"
	SuffixPixelSelection  = ".pixelselection"
	SuffixShapeSelection  = ".shapeselection"
	SuffixShapeLayer      = ".shapelayer"
)

// Resolver builds archive locations for nodes.
type Resolver struct {
	Name     string
	URI      string
	External bool
	Paths    domain.PathMap
}

// Location returns (External ? "" : URI) + Name + "/layers/" + filename + suffix.
func (r Resolver) Location(id domain.NodeID, suffix string) (string, error) {
	filename, ok := r.Paths.Filename(id)
	if !ok {
		return "", fmt.Errorf("node %s: %w", id, domain.ErrUnmappedNode)
	}
	root := r.URI
	if r.External {
		root = ""
	}
	return root + r.Name + "/" + LayersDir + "/" + filename + suffix, nil
}
