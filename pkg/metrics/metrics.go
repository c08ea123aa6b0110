// Package metrics exposes Prometheus instrumentation for snapshot
// evaluation and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swarm_robustness/pkg/robustness"
)

// Registry holds every collector on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	SnapshotsEvaluated prometheus.Counter
	EvaluationDuration prometheus.Histogram
	PairsAnalyzed      prometheus.Counter
	SnapshotMetric     *prometheus.GaugeVec // most recent snapshot, by metric name

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all collectors initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}

	r.SnapshotsEvaluated = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "swarm_snapshots_evaluated_total",
			Help: "Total number of snapshots evaluated",
		},
	)
	r.EvaluationDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swarm_snapshot_evaluation_duration_seconds",
			Help:    "Duration of a single snapshot evaluation in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)
	r.PairsAnalyzed = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "swarm_pairs_analyzed_total",
			Help: "Total number of node pairs analysed",
		},
	)
	r.SnapshotMetric = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swarm_snapshot_metric",
			Help: "Robustness metrics of the most recently evaluated snapshot",
		},
		[]string{"metric"},
	)

	r.HTTPRequestsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "swarm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swarm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	return r
}

// ObserveSnapshot records one evaluated snapshot. It implements
// robustness.Observer.
func (r *Registry) ObserveSnapshot(m robustness.Metrics, pairs int, elapsed time.Duration) {
	r.SnapshotsEvaluated.Inc()
	r.EvaluationDuration.Observe(elapsed.Seconds())
	r.PairsAnalyzed.Add(float64(pairs))

	r.SnapshotMetric.WithLabelValues("timestamp").Set(float64(m.Timestamp))
	r.SnapshotMetric.WithLabelValues("flow_robustness").Set(m.FlowRobustness)
	r.SnapshotMetric.WithLabelValues("redundancy_avg").Set(m.RedundancyAvg)
	r.SnapshotMetric.WithLabelValues("disparity_avg").Set(m.DisparityAvg)
	r.SnapshotMetric.WithLabelValues("modularity").Set(m.Modularity)
	r.SnapshotMetric.WithLabelValues("criticality").Set(float64(m.Criticality))
	r.SnapshotMetric.WithLabelValues("routing_cost").Set(float64(m.RoutingCost))
	r.SnapshotMetric.WithLabelValues("efficiency").Set(m.Efficiency)
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

var _ robustness.Observer = (*Registry)(nil)
