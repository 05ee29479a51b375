package handler

import (
	"context"
	"net/http"
	"time"

	"community-api/internal/model"
)

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db     pinger
	resp   *Responder
	window time.Duration
}

func NewHealthHandler(db pinger, resp *Responder) *HealthHandler {
	return &HealthHandler{db: db, resp: resp, window: 2 * time.Second}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.window)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		h.resp.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, model.HealthResponse{
			Status:  "unavailable",
			Message: "Database unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:  "ok",
		Message: "Service active and running...",
	})
}
