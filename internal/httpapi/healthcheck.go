package httpapi

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"weatherdash/internal/utils"
)

const readinessTimeout = 2 * time.Second

// ReadinessChecker reports whether the app can serve dashboard traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
	handleReadyz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db    *sql.DB
	ready ReadinessChecker
}

func NewHealthchecker(db *sql.DB, ready ReadinessChecker) healthchecker {
	return &healthcheckerImpl{db: db, ready: ready}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *healthcheckerImpl) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if h.ready == nil {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.ready.CheckReadiness(ctx); err != nil {
		slog.Warn("readiness check failed", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, ready ReadinessChecker) {
	healthchecker := NewHealthchecker(db, ready)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
	mux.HandleFunc("GET /readyz", healthchecker.handleReadyz)
}
