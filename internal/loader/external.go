package loader

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/store"
)

// ExternalLoader loads a layer whose content lives in a format-specific entry.
type ExternalLoader interface {
	LoadLayer(ctx context.Context, st ports.Store, n *domain.ShapeLayer, location string) error
}

// ExternalLoaderFunc adapts a function to ExternalLoader.
type ExternalLoaderFunc func(ctx context.Context, st ports.Store, n *domain.ShapeLayer, location string) error

func (f ExternalLoaderFunc) LoadLayer(ctx context.Context, st ports.Store, n *domain.ShapeLayer, location string) error {
	return f(ctx, st, n, location)
}

// ShapeLayerLoader reads a vector shape layer stored as an XML document.
// The content is checked for well-formedness and kept undecoded.
type ShapeLayerLoader struct{}

func (ShapeLayerLoader) LoadLayer(ctx context.Context, st ports.Store, n *domain.ShapeLayer, location string) error {
	data, err := store.ReadAll(ctx, st, location)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return fmt.Errorf("%s: %w", location, domain.ErrMissingEntry)
		}
		return err
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	sawElement := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %v: %w", location, err, domain.ErrMalformedData)
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawElement = true
		}
	}
	if !sawElement {
		return fmt.Errorf("%s: no root element: %w", location, domain.ErrMalformedData)
	}

	n.Content = data
	return nil
}
