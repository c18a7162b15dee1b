package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles the health check endpoint.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, "Database unavailable", map[string]string{
			"status":   "degraded",
			"database": err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, "OK", map[string]string{"status": "ok"})
}
