package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weatherdash"

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec // labels: method, status

	ChartRenders        *prometheus.CounterVec   // labels: variable, outcome={success,empty,error}
	ChartRenderDuration *prometheus.HistogramVec // labels: variable
	ChartCache          *prometheus.CounterVec   // labels: result={hit,miss}

	DatasetRows prometheus.Gauge
	Imports     *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewUnregistered()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.ChartRenders,
		m.ChartRenderDuration,
		m.ChartCache,
		m.DatasetRows,
		m.Imports,
	)
	return m
}

// NewUnregistered creates Metrics without registering them, for tests and
// one-shot commands that nothing scrapes.
func NewUnregistered() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart renders by variable and outcome.",
		}, []string{"variable", "outcome"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent rendering a chart PNG.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"variable"}),
		ChartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_cache_total",
			Help:      "Chart cache lookups by result.",
		}, []string{"result"}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the loaded dataset.",
		}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_imports_total",
			Help:      "Dataset imports by outcome.",
		}, []string{"outcome"}),
	}
}
