// Package colorspace provides the registry that binds embedded profiles to color space families.
package colorspace

import (
	"fmt"
	"sync"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Family describes a registered color model.
type Family struct {
	Base domain.ColorSpace
	// Signature is the ICC data color space this family accepts, empty if profiles are not allowed.
	Signature string
}

// Registry implements ports.ColorSpaceRegistry.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]Family
}

var _ ports.ColorSpaceRegistry = (*Registry)(nil)

// NewRegistry returns a registry with the built-in RGBA, GRAYA and ALPHA families.
func NewRegistry() *Registry {
	r := &Registry{families: make(map[string]Family)}
	r.Register(Family{Base: domain.RGBA8, Signature: "RGB "})
	r.Register(Family{Base: domain.GRAYA8, Signature: "GRAY"})
	r.Register(Family{Base: domain.ALPHA8})
	return r
}

// Register adds or replaces a family.
func (r *Registry) Register(f Family) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[f.Base.ID] = f
}

// Lookup returns the family default color space for id.
func (r *Registry) Lookup(id string) (domain.ColorSpace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[id]
	return f.Base, ok
}

// ColorSpace returns the color space of family id carrying profile.
// A nil profile yields the family default.
func (r *Registry) ColorSpace(id string, profile *domain.Profile) (domain.ColorSpace, error) {
	r.mu.RLock()
	f, ok := r.families[id]
	r.mu.RUnlock()
	if !ok {
		return domain.ColorSpace{}, fmt.Errorf("%s: %w", id, domain.ErrUnknownColorSpace)
	}

	cs := f.Base
	if profile == nil {
		return cs, nil
	}
	if f.Signature == "" {
		return domain.ColorSpace{}, fmt.Errorf("color space %s does not accept profiles: %w", id, domain.ErrMalformedData)
	}
	if profile.DataColorSpace != f.Signature {
		return domain.ColorSpace{}, fmt.Errorf("profile data color space %q does not match %s: %w", profile.DataColorSpace, id, domain.ErrMalformedData)
	}
	cs.Profile = profile
	return cs, nil
}
