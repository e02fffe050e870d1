package strata

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/strata/internal/loader"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/manifest"
	"github.com/aretw0/strata/pkg/adapters/dir"
	"github.com/aretw0/strata/pkg/adapters/zip"
	"github.com/aretw0/strata/pkg/colorspace"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/store"
)

type (
	// Report summarizes a load: per-node outcomes and skipped features.
	Report = loader.Report
	// NodeResult is the outcome of a single node.
	NodeResult = loader.NodeResult
	// NodeError is the failure of a single node.
	NodeError = loader.NodeError
	// ExternalLoader loads externally stored layer formats.
	ExternalLoader = loader.ExternalLoader
)

// Document is a loaded KRA document.
type Document struct {
	// Name is the document name used as the archive path root.
	Name          string
	SyntaxVersion int
	Editor        string
	Image         *domain.Image
	Report        *Report
}

// Layer returns the first node with the given name, or nil.
func (d *Document) Layer(name string) domain.Node {
	return d.Image.FindByName(name)
}

type config struct {
	logger     *slog.Logger
	hooks      domain.LoadHooks
	registry   ports.ColorSpaceRegistry
	bestEffort bool
	uri        string
	hasURI     bool
	external   map[string]ExternalLoader
}

// Option configures Open and Load.
type Option func(*config)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LoadHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithRegistry replaces the default color space registry.
func WithRegistry(reg ports.ColorSpaceRegistry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithBestEffort makes node failures non-fatal: they are kept in the Report only.
func WithBestEffort(enabled bool) Option {
	return func(c *config) {
		c.bestEffort = enabled
	}
}

// WithExternalURI marks the document as referencing an external location.
func WithExternalURI(uri string) Option {
	return func(c *config) {
		c.uri = uri
		c.hasURI = true
	}
}

// WithExternalLoader registers a loader for an external layer format.
func WithExternalLoader(format string, el ExternalLoader) Option {
	return func(c *config) {
		c.external[format] = el
	}
}

// Open loads a .kra file or an unpacked KRA directory.
func Open(ctx context.Context, path string, opts ...Option) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	if info.IsDir() {
		return Load(ctx, dir.New(path), opts...)
	}

	archive, err := zip.Open(path)
	if err != nil {
		return nil, err
	}
	defer archive.Close()
	return Load(ctx, archive, opts...)
}

// Load reads a document from any archive.
// Manifest errors return a nil document. Node failures return the partially
// loaded document together with the joined node errors, unless best effort is on.
func Load(ctx context.Context, archive ports.Archive, opts ...Option) (*Document, error) {
	cfg := &config{
		logger:   logging.NewNop(),
		registry: colorspace.NewRegistry(),
		external: map[string]ExternalLoader{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	st := store.New(archive, store.WithLogger(cfg.logger))
	md, err := manifest.Read(ctx, st, cfg.registry)
	if err != nil {
		return nil, err
	}

	name := md.Image.Name
	loaderOpts := []loader.Option{
		loader.WithLogger(cfg.logger),
		loader.WithHooks(cfg.hooks),
		loader.WithRegistry(cfg.registry),
	}
	if cfg.hasURI {
		loaderOpts = append(loaderOpts, loader.WithExternalURI(cfg.uri))
	}
	for format, el := range cfg.external {
		loaderOpts = append(loaderOpts, loader.WithExternalLoader(format, el))
	}

	l := loader.New(md.Image, st, md.Paths, name, md.SyntaxVersion, loaderOpts...)
	loadErr := l.Load(ctx)

	doc := &Document{
		Name:          name,
		SyntaxVersion: md.SyntaxVersion,
		Editor:        md.Editor,
		Image:         md.Image,
		Report:        l.Report(),
	}
	if loadErr != nil {
		if ctx.Err() != nil || !cfg.bestEffort {
			return doc, loadErr
		}
		cfg.logger.Warn("ignoring node failures", "document", name, "failed", doc.Report.Failed())
	}
	return doc, nil
}
