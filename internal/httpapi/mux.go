package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux serves the health checks and, when metricsHandler is set, /metrics.
func NewMux(db *sql.DB, ready ReadinessChecker, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, ready)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	return mux
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
