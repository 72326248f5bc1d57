// Package metrics exposes Prometheus instrumentation for the optimization
// engine: run counters, duration histograms, and solution-quality gauges.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the engine's metric container.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	ObjectiveValue *prometheus.GaugeVec
	Throughput     *prometheus.GaugeVec
	NetworkPoints  prometheus.Histogram
	NetworkSegments prometheus.Histogram
	ValidationFailures *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter

	ServiceInfo *prometheus.GaugeVec
}

// Init creates and registers the metric set with the default registry.
func Init(namespace, subsystem string) *Metrics {
	m := &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "optimization_runs_total",
				Help:      "Total number of optimization runs",
			},
			[]string{"algorithm", "status"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "optimization_run_duration_seconds",
				Help:      "Duration of optimization runs",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"algorithm"},
		),
		ObjectiveValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "optimization_objective_value",
				Help:      "Objective value of the last run per algorithm",
			},
			[]string{"algorithm"},
		),
		Throughput: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "optimization_throughput_mmscfd",
				Help:      "Total throughput of the last run per algorithm",
			},
			[]string{"algorithm"},
		),
		NetworkPoints: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_points",
				Help:      "Point count of optimized networks",
				Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
			},
		),
		NetworkSegments: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "network_segments",
				Help:      "Segment count of optimized networks",
				Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
			},
		),
		ValidationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "post_solution_validation_failures_total",
				Help:      "Runs whose solution failed physical validation",
			},
			[]string{"algorithm"},
		),
		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "result_cache_hits_total",
				Help:      "Optimization result cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "result_cache_misses_total",
				Help:      "Optimization result cache misses",
			},
		),
		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Static service information",
			},
			[]string{"version", "environment"},
		),
	}
	return m
}

// ObserveRun records one finished optimization run.
func (m *Metrics) ObserveRun(algorithm, status string, duration time.Duration, objective, throughput float64, validationFailed bool) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(algorithm, status).Inc()
	m.RunDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.ObjectiveValue.WithLabelValues(algorithm).Set(objective)
	m.Throughput.WithLabelValues(algorithm).Set(throughput)
	if validationFailed {
		m.ValidationFailures.WithLabelValues(algorithm).Inc()
	}
}

// ObserveNetwork records the size of a network entering a run.
func (m *Metrics) ObserveNetwork(points, segments int) {
	if m == nil {
		return
	}
	m.NetworkPoints.Observe(float64(points))
	m.NetworkSegments.Observe(float64(segments))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts the metrics endpoint on the given port. Blocks.
func Serve(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	return http.ListenAndServe(":"+strconv.Itoa(port), mux)
}
