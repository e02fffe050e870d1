package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/strata/internal/codec"
	"github.com/aretw0/strata/pkg/domain"
)

// loadPaintDevice reads the pixel payload at loc into dev.
// An absent entry is a failure; a malformed one also disconnects dev.
func (l *Loader) loadPaintDevice(ctx context.Context, dev *domain.PaintDevice, loc string) (domain.Outcome, error) {
	outcome, err := l.loadOptionalPaintDevice(ctx, dev, loc)
	if outcome == domain.OutcomeSkipped {
		l.logger.Error("no image data", "location", loc)
		return domain.OutcomeFailed, fmt.Errorf("%s: %w", loc, domain.ErrMissingEntry)
	}
	return outcome, err
}

// loadOptionalPaintDevice is loadPaintDevice for entries that may be absent,
// reported as OutcomeSkipped without logging.
func (l *Loader) loadOptionalPaintDevice(ctx context.Context, dev *domain.PaintDevice, loc string) (domain.Outcome, error) {
	data, outcome, err := l.readOptional(ctx, loc)
	if outcome != domain.OutcomeLoaded {
		return outcome, err
	}
	if err := decodeInto(dev, data); err != nil {
		dev.Disconnect()
		l.logger.Error("malformed pixel data", "location", loc, "error", err)
		return domain.OutcomeFailed, err
	}
	return domain.OutcomeLoaded, nil
}

// loadProfile applies the embedded profile at loc, when present, to dev's color space.
func (l *Loader) loadProfile(ctx context.Context, dev *domain.PaintDevice, loc string) (domain.Outcome, error) {
	data, outcome, err := l.readOptional(ctx, loc)
	if outcome != domain.OutcomeLoaded {
		return outcome, err
	}

	profile, err := domain.ParseProfile(data)
	if err != nil {
		l.logger.Error("invalid profile", "location", loc, "error", err)
		return domain.OutcomeFailed, err
	}
	cs, err := l.registry.ColorSpace(dev.ColorSpace().ID, profile)
	if err != nil {
		l.logger.Error("profile not usable", "location", loc, "profile", profile.Name, "error", err)
		return domain.OutcomeFailed, err
	}
	if err := dev.SetColorSpace(cs); err != nil {
		return domain.OutcomeFailed, err
	}
	return domain.OutcomeLoaded, nil
}

// loadFilterConfiguration replaces cfg's parameters with the XML at loc, when present.
// An empty entry keeps the defaults.
func (l *Loader) loadFilterConfiguration(ctx context.Context, cfg *domain.FilterConfig, loc string) (domain.Outcome, error) {
	data, outcome, err := l.readOptional(ctx, loc)
	if outcome != domain.OutcomeLoaded {
		return outcome, err
	}
	if len(data) == 0 {
		return domain.OutcomeSkipped, nil
	}
	if err := codec.DecodeFilterConfig(data, cfg); err != nil {
		l.logger.Error("invalid filter configuration", "location", loc, "error", err)
		return domain.OutcomeFailed, err
	}
	return domain.OutcomeLoaded, nil
}

// readOptional reads the whole entry at loc, reporting OutcomeSkipped when it
// is absent. Any other archive error fails, so an unreachable backend is never
// mistaken for a missing entry.
func (l *Loader) readOptional(ctx context.Context, loc string) ([]byte, domain.Outcome, error) {
	if err := l.store.Open(ctx, loc); err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil, domain.OutcomeSkipped, nil
		}
		return nil, domain.OutcomeFailed, err
	}
	defer l.closeEntry(loc)

	data, err := l.store.Read(l.store.Size())
	if err != nil {
		return nil, domain.OutcomeFailed, err
	}
	l.entryRead(ctx, loc, len(data))
	return data, domain.OutcomeLoaded, nil
}

// exists reports whether loc is present, surfacing archive errors.
func (l *Loader) exists(ctx context.Context, loc string) (bool, error) {
	ok, err := l.store.HasFile(ctx, loc)
	if err != nil {
		return false, fmt.Errorf("%s: %w", loc, err)
	}
	return ok, nil
}

func (l *Loader) closeEntry(loc string) {
	if err := l.store.Close(); err != nil {
		l.logger.Warn("failed to close entry", "location", loc, "error", err)
	}
}

func decodeInto(dev *domain.PaintDevice, data []byte) error {
	ts, err := codec.DecodeRaster(data, dev.ColorSpace().PixelSize)
	if err != nil {
		return err
	}
	return dev.SetTiles(ts)
}
