package observability

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the loader collectors.
type Metrics struct {
	NodesLoaded  *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
	EntryBytes   prometheus.Counter
	EntriesRead  prometheus.Counter
	Documents    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg (when not nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodesLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_nodes_loaded_total",
				Help: "Total number of visited nodes by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "strata_node_load_duration_seconds",
				Help:    "Duration of node loads, children included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		EntryBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strata_entry_bytes_total",
			Help: "Total bytes read from archive entries",
		}),
		EntriesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strata_entries_read_total",
			Help: "Total number of archive entries read",
		}),
		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strata_documents_total",
				Help: "Total number of document loads by result",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.NodesLoaded, m.NodeDuration, m.EntryBytes, m.EntriesRead, m.Documents)
	}
	return m
}

// Hooks returns loader hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LoadHooks {
	return domain.LoadHooks{
		OnNodeLoaded: func(_ context.Context, e *domain.NodeEvent) {
			m.NodesLoaded.WithLabelValues(e.Kind.String(), e.Outcome.String()).Inc()
			m.NodeDuration.WithLabelValues(e.Kind.String()).Observe(e.Duration.Seconds())
		},
		OnEntryRead: func(_ context.Context, e *domain.EntryEvent) {
			m.EntriesRead.Inc()
			m.EntryBytes.Add(float64(e.Bytes))
		},
	}
}

// ObserveDocument counts a finished document load.
func (m *Metrics) ObserveDocument(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Documents.WithLabelValues(result).Inc()
}
