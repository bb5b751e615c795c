// Package observability holds the Prometheus collector and the OpenTelemetry
// tracer provider.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "github.com/ndstyle/mindflow2/domain/services"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	Generations        *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	Repairs            *prometheus.CounterVec
	Exports            *prometheus.CounterVec

	// Query bus metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Mind maps generated from notes, by whether the fallback map was used",
			},
			[]string{"fallback"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent generating a mind map from notes",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		Repairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "normalization_repairs_total",
				Help:      "Repairs applied while normalizing untrusted graphs",
			},
			[]string{"kind"},
		),
		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Exports by format and outcome",
			},
			[]string{"format", "status"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Queries dispatched through the query bus",
			},
			[]string{"query", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Generations,
		c.GenerationDuration,
		c.Repairs,
		c.Exports,
		c.Queries,
		c.QueryDuration,
	)

	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordGeneration implements services.Recorder.
func (c *Collector) RecordGeneration(fallback bool, d time.Duration) {
	c.Generations.WithLabelValues(strconv.FormatBool(fallback)).Inc()
	c.GenerationDuration.Observe(d.Seconds())
}

// RecordNormalization implements services.Recorder.
func (c *Collector) RecordNormalization(r domain.NormalizationReport) {
	add := func(kind string, n int) {
		if n > 0 {
			c.Repairs.WithLabelValues(kind).Add(float64(n))
		}
	}
	add("synthesized_node_id", r.SynthesizedNodeIDs)
	add("synthesized_edge_id", r.SynthesizedEdgeIDs)
	add("defaulted_label", r.DefaultedLabels)
	add("defaulted_position", r.DefaultedPositions)
	add("dropped_node", r.DroppedNodes)
	add("dropped_edge", r.DroppedEdges)
	add("flattened_children", r.FlattenedChildren)
}

// RecordExport implements services.Recorder.
func (c *Collector) RecordExport(format string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Exports.WithLabelValues(format, status).Inc()
}

// ObserveQuery implements the query bus metrics hook.
func (c *Collector) ObserveQuery(queryType string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Queries.WithLabelValues(queryType, status).Inc()
	c.QueryDuration.WithLabelValues(queryType).Observe(d.Seconds())
}
