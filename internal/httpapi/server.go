package httpapi

import (
	"net/http"
	"time"

	"weatherdash/internal/config"
	"weatherdash/internal/observability"
)

func NewServer(cfg config.Config, mux *http.ServeMux, metrics *observability.Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux, metrics),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
