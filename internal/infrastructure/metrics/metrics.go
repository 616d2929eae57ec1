// Package metrics provides Prometheus collectors for fact resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the resolver.
type Metrics struct {
	// Events materialized on first read, by fact type name
	EventsLazilyCreated *prometheus.CounterVec

	// Unflagged events promoted to preferred
	PreferredPromotions prometheus.Counter

	// Resolutions that found more than one preferred event
	PreferredConflicts prometheus.Counter

	// Resolve latency by storage mode
	ResolveLatency *prometheus.HistogramVec

	// Footnote numbers handed out
	FootnotesAssigned prometheus.Counter
}

// New creates a Metrics instance registered with reg. A nil reg registers
// with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		EventsLazilyCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_events_lazily_created_total",
			Help: "Total standalone events created while resolving a fact",
		}, []string{"fact_type"}),

		PreferredPromotions: f.NewCounter(prometheus.CounterOpts{
			Name: "lineage_preferred_promotions_total",
			Help: "Total events promoted to preferred during resolution",
		}),

		PreferredConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "lineage_preferred_conflicts_total",
			Help: "Total resolutions that found several preferred events of one subtype",
		}),

		ResolveLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineage_resolve_duration_seconds",
			Help:    "Duration of fact resolution by storage mode",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"storage"}),

		FootnotesAssigned: f.NewCounter(prometheus.CounterOpts{
			Name: "lineage_footnotes_assigned_total",
			Help: "Total footnote numbers assigned across render passes",
		}),
	}
}

// EventCreated records a lazily created event.
func (m *Metrics) EventCreated(factType string) {
	if m != nil {
		m.EventsLazilyCreated.WithLabelValues(factType).Inc()
	}
}

// PreferredPromoted records a promotion to preferred.
func (m *Metrics) PreferredPromoted() {
	if m != nil {
		m.PreferredPromotions.Inc()
	}
}

// PreferredConflict records a resolution with several preferred events.
func (m *Metrics) PreferredConflict() {
	if m != nil {
		m.PreferredConflicts.Inc()
	}
}

// ObserveResolve records the duration of one resolution.
func (m *Metrics) ObserveResolve(storage string, d time.Duration) {
	if m != nil {
		m.ResolveLatency.WithLabelValues(storage).Observe(d.Seconds())
	}
}

// FootnoteAssigned records a newly numbered footnote.
func (m *Metrics) FootnoteAssigned() {
	if m != nil {
		m.FootnotesAssigned.Inc()
	}
}
