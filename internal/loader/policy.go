package loader

// SelectionSource tells where an adjustment layer takes its selection from.
type SelectionSource int

const (
	// SelectionDefault assigns an empty selection without reading anything.
	SelectionDefault SelectionSource = iota
	// SelectionLegacyPixel reads {location}.selection as a raw pixel buffer.
	SelectionLegacyPixel
	// SelectionComponents reads {location}.pixelselection and {location}.shapeselection.
	SelectionComponents
)

func (s SelectionSource) String() string {
	switch s {
	case SelectionLegacyPixel:
		return "legacy-pixel"
	case SelectionComponents:
		return "components"
	default:
		return "default"
	}
}

// VersionPolicy collects every decision that depends on the archive syntax version.
type VersionPolicy struct {
	Version int
	// ConvertLegacyMasks turns a paint layer's {location}.mask entry into a transparency mask.
	ConvertLegacyMasks  bool
	AdjustmentSelection SelectionSource
}

var versionPolicies = map[int]VersionPolicy{
	1: {Version: 1, ConvertLegacyMasks: true, AdjustmentSelection: SelectionLegacyPixel},
	2: {Version: 2, ConvertLegacyMasks: false, AdjustmentSelection: SelectionComponents},
}

// PolicyFor returns the policy of a syntax version. Unknown versions get no
// legacy conversion and default (empty) adjustment selections.
func PolicyFor(version int) VersionPolicy {
	if p, ok := versionPolicies[version]; ok {
		return p
	}
	return VersionPolicy{Version: version, AdjustmentSelection: SelectionDefault}
}
