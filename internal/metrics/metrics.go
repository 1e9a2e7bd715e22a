// Package metrics exposes Prometheus collectors for the API server.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "clubsafe"

	readHeaderTimeout = 10 * time.Second
)

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tagResultsTotal *prometheus.CounterVec
	cacheTotal      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of handled HTTP requests",
			},
			[]string{"route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"route"},
		),
		tagResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tag_results_total",
				Help:      "Total number of tagging results by outcome",
			},
			[]string{"outcome"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summary_cache_total",
				Help:      "Total number of summary cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.tagResultsTotal,
		m.cacheTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTagResult(outcome string) {
	m.tagResultsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Exporter serves /metrics on its own listener, apart from the API.
type Exporter struct {
	server *http.Server
}

func NewExporter(addr string, m *Metrics) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())

	return &Exporter{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start blocks until the exporter stops. A graceful shutdown returns nil.
func (e *Exporter) Start() error {
	if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
