// Package metrics provides Prometheus metrics for sercha-view.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

const namespace = "sercha_view"

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics holds all Prometheus collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	// Render metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec

	// Artifact metrics
	PublishesTotal *prometheus.CounterVec
	FallbacksTotal *prometheus.CounterVec

	// Sweeper metrics
	SweepsTotal      prometheus.Counter
	SweptObjects     *prometheus.CounterVec
	LastSweepScanned prometheus.Gauge

	// Search metrics
	SearchesTotal  *prometheus.CounterVec
	SearchHits     prometheus.Histogram
	SearchDuration prometheus.Histogram
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.RendersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of highlighter invocations",
		},
		[]string{"format", "outcome"},
	)

	m.RenderDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of document renders in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"format"},
	)

	m.PublishesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_publishes_total",
			Help:      "Total number of derived artifact publish attempts",
		},
		[]string{"success"},
	)

	m.FallbacksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total number of hits served without a derived artifact",
		},
		[]string{"reason"},
	)

	m.SweepsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Total number of sweeper cycles",
		},
	)

	m.SweptObjects = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swept_objects_total",
			Help:      "Derived artifacts handled by the sweeper, by result",
		},
		[]string{"result"},
	)

	m.LastSweepScanned = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sweep_scanned",
			Help:      "Number of derived artifacts listed by the most recent sweep",
		},
	)

	m.SearchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of search requests",
		},
		[]string{"success"},
	)

	m.SearchHits = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Number of hits returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	m.SearchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of enriched searches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRender records one highlighter invocation.
func (m *Metrics) ObserveRender(format domain.Format, outcome string, elapsed time.Duration) {
	m.RendersTotal.WithLabelValues(format.String(), outcome).Inc()
	m.RenderDuration.WithLabelValues(format.String()).Observe(elapsed.Seconds())
}

// ObservePublish records a derived artifact publish attempt.
func (m *Metrics) ObservePublish(ok bool) {
	m.PublishesTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

// ObserveFallback records a hit served without a derived artifact.
func (m *Metrics) ObserveFallback(reason string) {
	m.FallbacksTotal.WithLabelValues(reason).Inc()
}

// ObserveSweep records one sweeper cycle.
func (m *Metrics) ObserveSweep(report domain.SweepReport) {
	m.SweepsTotal.Inc()
	m.SweptObjects.WithLabelValues("expired").Add(float64(report.Expired))
	m.SweptObjects.WithLabelValues("deleted").Add(float64(report.Deleted))
	m.SweptObjects.WithLabelValues("failed").Add(float64(report.Failed))
	m.LastSweepScanned.Set(float64(report.Scanned))
}

// ObserveSearch records a search request.
func (m *Metrics) ObserveSearch(ok bool, hits int, elapsed time.Duration) {
	m.SearchesTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
	if ok {
		m.SearchHits.Observe(float64(hits))
	}
	m.SearchDuration.Observe(elapsed.Seconds())
}
