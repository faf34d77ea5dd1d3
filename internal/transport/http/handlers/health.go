package http_handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "database unavailable",
			})
			return
		}
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Status handles GET /api/status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.Message(w, http.StatusOK, "Backend is running")
}
