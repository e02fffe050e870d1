package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/colorspace"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Loader fills the nodes of an image from a store.
// A Loader is used for a single load and is not safe for concurrent use.
type Loader struct {
	store    ports.Store
	registry ports.ColorSpaceRegistry
	image    *domain.Image
	resolver Resolver
	policy   VersionPolicy
	external map[string]ExternalLoader

	logger *slog.Logger
	hooks  domain.LoadHooks
	report *Report
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LoadHooks) Option {
	return func(l *Loader) {
		l.hooks = hooks
	}
}

// WithRegistry replaces the default color space registry.
func WithRegistry(reg ports.ColorSpaceRegistry) Option {
	return func(l *Loader) {
		l.registry = reg
	}
}

// WithExternalURI is the option form of SetExternalURI.
func WithExternalURI(uri string) Option {
	return func(l *Loader) {
		l.SetExternalURI(uri)
	}
}

// WithExternalLoader registers the loader of an externally stored layer format.
func WithExternalLoader(format string, el ExternalLoader) Option {
	return func(l *Loader) {
		l.external[format] = el
	}
}

// New creates a Loader for img. paths maps node ids to archive filenames,
// name is the document name and syntaxVersion selects the legacy rules.
func New(img *domain.Image, st ports.Store, paths domain.PathMap, name string, syntaxVersion int, opts ...Option) *Loader {
	l := &Loader{
		store:    st,
		registry: colorspace.NewRegistry(),
		image:    img,
		resolver: Resolver{Name: name, Paths: paths},
		policy:   PolicyFor(syntaxVersion),
		external: map[string]ExternalLoader{
			domain.DefaultShapeFormat: ShapeLayerLoader{},
		},
		logger: logging.NewNop(),
		report: newReport(syntaxVersion),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("document", name, "syntax_version", syntaxVersion)
	return l
}

// SetExternalURI records that the document references an external location.
func (l *Loader) SetExternalURI(uri string) {
	l.resolver.URI = uri
	l.resolver.External = true
}

// Policy returns the version policy in effect.
func (l *Loader) Policy() VersionPolicy {
	return l.policy
}

// Report returns the accumulated load report.
func (l *Loader) Report() *Report {
	return l.report
}

// Load visits every top-level node of the image, then resolves clone sources.
// The returned error joins the failures of all nodes; nil means every node loaded.
func (l *Loader) Load(ctx context.Context) error {
	start := time.Now()
	err := l.visitAll(ctx, l.image.Root)
	l.image.Root.SetDirty(l.image.Bounds())
	l.resolveClones()
	l.report.Duration = time.Since(start)

	if err != nil {
		l.logger.Warn("document loaded with failures", "failed", l.report.Failed(), "duration", l.report.Duration)
		return err
	}
	l.logger.Info("document loaded", "nodes", len(l.report.Nodes), "duration", l.report.Duration)
	return nil
}

// Visit loads n and its children. The node's own outcome is recorded apart
// from its children's: a layer whose data loaded stays loaded when one of its
// masks fails, while groups and clones fail with any child. The returned error
// joins both.
func (l *Loader) Visit(ctx context.Context, n domain.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	var own, children error
	switch node := n.(type) {
	case *domain.PaintLayer:
		own, children = l.visitPaintLayer(ctx, node)
	case *domain.GroupLayer:
		own = l.visitContainer(ctx, node)
	case *domain.AdjustmentLayer:
		own, children = l.visitAdjustmentLayer(ctx, node)
	case *domain.GeneratorLayer:
		own, children = l.visitGeneratorLayer(ctx, node)
	case *domain.CloneLayer:
		own = l.visitContainer(ctx, node)
	case *domain.ShapeLayer:
		own, children = l.visitShapeLayer(ctx, node)
	case *domain.FilterMask:
		own = l.visitFilterMask(ctx, node)
	case *domain.TransparencyMask:
		own = l.visitMask(ctx, node)
	case *domain.TransformationMask:
		own = l.visitMask(ctx, node)
	case *domain.SelectionMask:
		own = l.visitMask(ctx, node)
	default:
		own = nodeError(n, "", fmt.Errorf("%T: %w", n, domain.ErrUnknownNodeKind))
	}

	l.record(ctx, n, start, own)
	return errors.Join(own, children)
}

// visitAll visits every child of parent, continuing past failures.
func (l *Loader) visitAll(ctx context.Context, parent domain.Node) error {
	var errs []error
	for _, child := range parent.Children() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := l.Visit(ctx, child); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Loader) record(ctx context.Context, n domain.Node, start time.Time, err error) {
	outcome := domain.OutcomeLoaded
	if err != nil {
		outcome = domain.OutcomeFailed
	}
	duration := time.Since(start)
	l.report.add(NodeResult{
		NodeID:  n.ID(),
		Name:    n.Name(),
		Kind:    n.Kind(),
		Outcome: outcome,
		Err:     err,
	})

	if err != nil {
		l.logger.Debug("node failed", "node", n.Name(), "kind", n.Kind().String(), "error", err)
	} else {
		l.logger.Debug("node loaded", "node", n.Name(), "kind", n.Kind().String(), "duration", duration)
	}

	if l.hooks.OnNodeLoaded != nil {
		l.hooks.OnNodeLoaded(ctx, &domain.NodeEvent{
			Timestamp: time.Now(),
			Document:  l.resolver.Name,
			NodeID:    n.ID(),
			NodeName:  n.Name(),
			Kind:      n.Kind(),
			Outcome:   outcome,
			Duration:  duration,
			Err:       err,
		})
	}
}

func (l *Loader) entryRead(ctx context.Context, location string, size int) {
	l.report.BytesRead += int64(size)
	if l.hooks.OnEntryRead != nil {
		l.hooks.OnEntryRead(ctx, &domain.EntryEvent{
			Timestamp: time.Now(),
			Document:  l.resolver.Name,
			Location:  location,
			Bytes:     size,
		})
	}
}

func (l *Loader) location(n domain.Node, suffix string) (string, error) {
	loc, err := l.resolver.Location(n.ID(), suffix)
	if err != nil {
		return "", nodeError(n, "", err)
	}
	return loc, nil
}

func (l *Loader) resolveClones() {
	l.image.Walk(func(n domain.Node, _ int) bool {
		clone, ok := n.(*domain.CloneLayer)
		if !ok || clone.CopyFrom == "" {
			return true
		}
		src := l.image.FindByName(clone.CopyFrom)
		if src == nil || src == domain.Node(clone) {
			l.logger.Warn("clone source not found", "node", clone.Name(), "copy_from", clone.CopyFrom)
			return true
		}
		clone.Source = src
		return true
	})
}
