package loader

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// loadSelection builds a selection from {loc}.pixelselection and {loc}.shapeselection.
// Shape components are not decoded; their presence is recorded as a limitation.
func (l *Loader) loadSelection(ctx context.Context, n domain.Node, loc string) (*domain.Selection, domain.Outcome, error) {
	sel := domain.NewSelection()
	outcome := domain.OutcomeSkipped

	pixelLoc := loc + SuffixPixelSelection
	pixel := domain.NewPaintDevice(domain.ALPHA8)
	loaded, err := l.loadOptionalPaintDevice(ctx, pixel, pixelLoc)
	if err != nil {
		sel.Pixel = pixel
		return sel, domain.OutcomeFailed, err
	}
	if loaded == domain.OutcomeLoaded {
		sel.Pixel = pixel
		outcome = domain.OutcomeLoaded
	}

	shapeLoc := loc + SuffixShapeSelection
	present, err := l.exists(ctx, shapeLoc)
	if err != nil {
		return sel, domain.OutcomeFailed, err
	}
	if present {
		l.logger.Warn("shape selection not loaded", "node", n.Name(), "location", shapeLoc)
		l.report.addLimitation(Limitation{
			NodeID:   n.ID(),
			Name:     n.Name(),
			Location: shapeLoc,
			Err:      domain.ErrUnsupportedShapeSelection,
		})
	}
	return sel, outcome, nil
}
