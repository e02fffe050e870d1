package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/strata/pkg/domain"
)

// legacyMaskName is given to transparency masks converted from {location}.mask.
const legacyMaskName = "Transparency Mask"

// visitPaintLayer returns the layer's own error and, separately, the joined
// errors of its masks.
func (l *Loader) visitPaintLayer(ctx context.Context, n *domain.PaintLayer) (own, children error) {
	loc, err := l.location(n, "")
	if err != nil {
		return err, nil
	}
	if err := l.loadDeviceAndProfile(ctx, n, n.PaintDevice(), loc); err != nil {
		return err, nil
	}

	// Masks listed in the tree load before any legacy mask is synthesized,
	// the synthesized one has no archive filename of its own.
	children = l.visitAll(ctx, n)

	if l.policy.ConvertLegacyMasks {
		if err := l.convertLegacyMask(ctx, n, loc+SuffixLegacyMask); err != nil {
			own = nodeError(n, loc+SuffixLegacyMask, err)
		}
	}
	n.SetDirty(l.image.Bounds())
	return own, children
}

// visitContainer visits every child and dirties n; n succeeds iff all children do.
func (l *Loader) visitContainer(ctx context.Context, n domain.Node) error {
	err := l.visitAll(ctx, n)
	n.SetDirty(l.image.Bounds())
	return err
}

func (l *Loader) visitAdjustmentLayer(ctx context.Context, n *domain.AdjustmentLayer) (own, children error) {
	loc, err := l.location(n, "")
	if err != nil {
		return err, nil
	}

	switch l.policy.AdjustmentSelection {
	case SelectionLegacyPixel:
		sel := domain.NewSelection()
		pixel := sel.GetOrCreatePixelSelection()
		legacyLoc := loc + SuffixLegacySelection
		outcome, err := l.loadOptionalPaintDevice(ctx, pixel, legacyLoc)
		switch {
		case err != nil:
			l.logger.Warn("legacy adjustment selection not loaded", "node", n.Name(), "location", legacyLoc, "error", err)
		case outcome == domain.OutcomeSkipped:
			l.logger.Warn("legacy adjustment selection missing", "node", n.Name(), "location", legacyLoc)
		}
		n.SetSelection(sel)
	case SelectionComponents:
		sel, _, err := l.loadSelection(ctx, n, loc)
		if err != nil {
			return nodeError(n, loc, err), nil
		}
		n.SetSelection(sel)
	default:
		n.SetSelection(domain.NewSelection())
	}

	if _, err := l.loadFilterConfiguration(ctx, n.Filter(), loc+SuffixFilterConfig); err != nil {
		return nodeError(n, loc+SuffixFilterConfig, err), nil
	}
	children = l.visitAll(ctx, n)
	n.SetDirty(l.image.Bounds())
	return nil, children
}

func (l *Loader) visitGeneratorLayer(ctx context.Context, n *domain.GeneratorLayer) (own, children error) {
	loc, err := l.location(n, "")
	if err != nil {
		return err, nil
	}
	if err := l.loadDeviceAndProfile(ctx, n, n.PaintDevice(), loc); err != nil {
		return err, nil
	}
	sel, _, err := l.loadSelection(ctx, n, loc)
	if err != nil {
		return nodeError(n, loc, err), nil
	}
	n.SetSelection(sel)
	if _, err := l.loadFilterConfiguration(ctx, n.Generator(), loc+SuffixFilterConfig); err != nil {
		return nodeError(n, loc+SuffixFilterConfig, err), nil
	}
	children = l.visitAll(ctx, n)
	n.SetDirty(l.image.Bounds())
	return nil, children
}

func (l *Loader) visitShapeLayer(ctx context.Context, n *domain.ShapeLayer) (own, children error) {
	loc, err := l.location(n, SuffixShapeLayer)
	if err != nil {
		return err, nil
	}
	el, ok := l.external[n.Format]
	if !ok {
		return nodeError(n, loc, fmt.Errorf("format %q: %w", n.Format, domain.ErrUnsupportedExternalLayer)), nil
	}
	if err := el.LoadLayer(ctx, l.store, n, loc); err != nil {
		return nodeError(n, loc, err), nil
	}
	children = l.visitAll(ctx, n)
	n.SetDirty(l.image.Bounds())
	return nil, children
}

func (l *Loader) visitFilterMask(ctx context.Context, n *domain.FilterMask) error {
	loc, err := l.location(n, "")
	if err != nil {
		return err
	}
	sel, _, err := l.loadSelection(ctx, n, loc)
	if err != nil {
		return nodeError(n, loc, err)
	}
	n.SetSelection(sel)
	if _, err := l.loadFilterConfiguration(ctx, n.Filter(), loc+SuffixFilterConfig); err != nil {
		return nodeError(n, loc+SuffixFilterConfig, err)
	}
	n.SetDirty(l.image.Bounds())
	return nil
}

type selectableNode interface {
	domain.Node
	domain.Selectable
}

// visitMask loads transparency, transformation and selection masks.
func (l *Loader) visitMask(ctx context.Context, n selectableNode) error {
	loc, err := l.location(n, "")
	if err != nil {
		return err
	}
	sel, _, err := l.loadSelection(ctx, n, loc)
	if err != nil {
		return nodeError(n, loc, err)
	}
	n.SetSelection(sel)
	n.SetDirty(l.image.Bounds())
	return nil
}

func (l *Loader) loadDeviceAndProfile(ctx context.Context, n domain.Node, dev *domain.PaintDevice, loc string) error {
	if _, err := l.loadPaintDevice(ctx, dev, loc); err != nil {
		return nodeError(n, loc, err)
	}
	if _, err := l.loadProfile(ctx, dev, loc+SuffixICC); err != nil {
		return nodeError(n, loc+SuffixICC, err)
	}
	return nil
}

// convertLegacyMask turns {location}.mask into a transparency mask placed
// before the layer's first child. An absent entry is not an error; a
// malformed one is logged and no mask is created.
func (l *Loader) convertLegacyMask(ctx context.Context, n *domain.PaintLayer, loc string) error {
	if err := l.store.Open(ctx, loc); err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil
		}
		return err
	}
	defer l.closeEntry(loc)

	data, err := l.store.Read(l.store.Size())
	if err != nil {
		l.logger.Warn("legacy mask not readable", "node", n.Name(), "location", loc, "error", err)
		return nil
	}
	l.entryRead(ctx, loc, len(data))

	sel := domain.NewSelection()
	pixel := sel.GetOrCreatePixelSelection()
	if err := decodeInto(pixel, data); err != nil {
		pixel.Disconnect()
		l.logger.Warn("legacy mask malformed", "node", n.Name(), "location", loc, "error", err)
		return nil
	}

	mask := domain.NewTransparencyMask(domain.NewNodeID(), legacyMaskName)
	mask.SetSelection(sel)
	n.InsertChild(mask, n.FirstChild())
	l.report.LegacyMasks++
	l.logger.Info("converted legacy mask", "node", n.Name(), "location", loc)
	return nil
}
