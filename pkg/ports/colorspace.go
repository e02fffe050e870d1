package ports

import "github.com/aretw0/strata/pkg/domain"

// ColorSpaceRegistry builds color spaces for a family id, optionally carrying an embedded profile.
type ColorSpaceRegistry interface {
	ColorSpace(id string, profile *domain.Profile) (domain.ColorSpace, error)
}
