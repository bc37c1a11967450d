package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterHealth mounts the readiness endpoint. Liveness is handled by the
// chi Heartbeat middleware; this one also checks the state database.
func (h *Handler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "database": "up"}
	status := http.StatusOK

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "down"
			status = http.StatusServiceUnavailable
		}
	} else {
		resp["database"] = "disabled"
	}

	JSON(w, status, resp)
}
