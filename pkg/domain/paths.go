package domain

// PathMap maps node identities to their archive filename (without suffix).
// It is built once by the manifest reader and only read afterwards.
type PathMap map[NodeID]string

// Filename returns the mapped filename of id.
func (m PathMap) Filename(id NodeID) (string, bool) {
	name, ok := m[id]
	return name, ok && name != ""
}
