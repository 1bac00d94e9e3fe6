// Package metrics records per-run counters of a reconciliation in a private
// Prometheus registry, for export in the node_exporter textfile format.
package metrics

import (
	"github.com/agentstation/utc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/reconciler"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	// Decisions by kind
	Decisions *prometheus.CounterVec

	// Reviews by reason
	Reviews *prometheus.CounterVec

	// Input records by source: "authoritative", "target"
	Records *prometheus.CounterVec

	Unchanged prometheus.Counter
	Warnings  prometheus.Counter

	Duration    prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treesync_decisions_total",
			Help: "Reconciliation decisions by kind",
		}, []string{"decision"}),

		Reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treesync_reviews_total",
			Help: "Records deferred to manual review by reason",
		}, []string{"reason"}),

		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treesync_records_total",
			Help: "Input records processed by source",
		}, []string{"source"}),

		Unchanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "treesync_unchanged_total",
			Help: "Linked records that were already current",
		}),

		Warnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "treesync_warnings_total",
			Help: "Warnings raised during reconciliation",
		}),

		Duration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "treesync_run_duration_seconds",
			Help: "Duration of the last reconciliation",
		}),

		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "treesync_last_success_timestamp_seconds",
			Help: "Unix time the last reconciliation finished",
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a finished reconciliation result.
func (m *Metrics) Observe(r *reconciler.Result) {
	if m == nil || r == nil {
		return
	}
	s := r.Summary()
	m.Decisions.WithLabelValues(string(reconciler.DecisionCreate)).Add(float64(s.Created))
	m.Decisions.WithLabelValues(string(reconciler.DecisionUpdate)).Add(float64(s.Updated))
	m.Decisions.WithLabelValues(string(reconciler.DecisionReview)).Add(float64(s.Reviewed))
	m.Decisions.WithLabelValues(string(reconciler.DecisionDelete)).Add(float64(s.Deleted))

	counts := r.ReviewCounts()
	for _, reason := range reconciler.Reasons {
		m.Reviews.WithLabelValues(string(reason)).Add(float64(counts[reason]))
	}

	m.Records.WithLabelValues("authoritative").Add(float64(r.Metadata.Stats.Authoritative))
	m.Records.WithLabelValues("target").Add(float64(r.Metadata.Stats.Targets))
	m.Unchanged.Add(float64(r.Unchanged))
	m.Warnings.Add(float64(len(r.Warnings)))

	m.Duration.Set(r.Metadata.Duration.Seconds())
	end := r.Metadata.EndTime
	if end.IsZero() {
		end = utc.Now()
	}
	m.LastSuccess.Set(float64(end.Unix()))
}

// WriteFile writes all metrics to path in the textfile format. The file is
// replaced atomically.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
