// Package metrics provides Prometheus metrics for a transitcat run.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded in the outcome label.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics for one run.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Network metrics
	GraphVertices prometheus.Gauge
	GraphEdges    prometheus.Gauge
	CatalogueSize *prometheus.GaugeVec
	LoadDuration  prometheus.Gauge

	// logger for error reporting
	logger *slog.Logger
}

// New creates and registers all metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transitcat_requests_total",
			Help: "Total number of stat requests answered",
		},
		[]string{"type", "outcome"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transitcat_request_duration_seconds",
			Help:    "Stat request latency distribution",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"type"},
	)

	graphVertices := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transitcat_graph_vertices",
		Help: "Number of vertices in the routing graph",
	})

	graphEdges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transitcat_graph_edges",
		Help: "Number of edges in the routing graph",
	})

	catalogueSize := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "transitcat_catalogue_entities",
			Help: "Number of stops and routes in the catalogue",
		},
		[]string{"kind"},
	)

	loadDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transitcat_load_duration_seconds",
		Help: "Time spent filling the catalogue and building the routing graph",
	})

	// Register all metrics with the custom registry
	registry.MustRegister(
		requestsTotal,
		requestDuration,
		graphVertices,
		graphEdges,
		catalogueSize,
		loadDuration,
	)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		GraphVertices:   graphVertices,
		GraphEdges:      graphEdges,
		CatalogueSize:   catalogueSize,
		LoadDuration:    loadDuration,
		logger:          logger,
	}
}

// ObserveRequest counts one answered request and records its latency.
// It is a no-op on a nil receiver.
func (m *Metrics) ObserveRequest(requestType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(requestType, outcome).Inc()
	m.RequestDuration.WithLabelValues(requestType).Observe(d.Seconds())
}

// SetNetwork records the catalogue and routing graph sizes.
func (m *Metrics) SetNetwork(stops, routes, vertices, edges int) {
	if m == nil {
		return
	}
	m.CatalogueSize.WithLabelValues("stop").Set(float64(stops))
	m.CatalogueSize.WithLabelValues("route").Set(float64(routes))
	m.GraphVertices.Set(float64(vertices))
	m.GraphEdges.Set(float64(edges))
}

// SetLoadDuration records how long the load phase took.
func (m *Metrics) SetLoadDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.LoadDuration.Set(d.Seconds())
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		if m.logger != nil {
			m.logger.Error("failed to write metrics textfile", "path", path, "error", err)
		}
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
