package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/strata/pkg/domain"
)

// Combine fans every event out to all hooks, in order.
func Combine(hooks ...domain.LoadHooks) domain.LoadHooks {
	return domain.LoadHooks{
		OnNodeLoaded: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeLoaded != nil {
					h.OnNodeLoaded(ctx, e)
				}
			}
		},
		OnEntryRead: func(ctx context.Context, e *domain.EntryEvent) {
			for _, h := range hooks {
				if h.OnEntryRead != nil {
					h.OnEntryRead(ctx, e)
				}
			}
		},
	}
}

// LogHooks logs node outcomes at info level (failures at warn) and entry reads at debug level.
func LogHooks(logger *slog.Logger) domain.LoadHooks {
	return domain.LoadHooks{
		OnNodeLoaded: func(ctx context.Context, e *domain.NodeEvent) {
			attrs := []any{
				"document", e.Document,
				"node", e.NodeName,
				"kind", e.Kind.String(),
				"outcome", e.Outcome.String(),
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "node_loaded", append(attrs, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "node_loaded", attrs...)
		},
		OnEntryRead: func(ctx context.Context, e *domain.EntryEvent) {
			logger.DebugContext(ctx, "entry_read", "document", e.Document, "location", e.Location, "bytes", e.Bytes)
		},
	}
}
