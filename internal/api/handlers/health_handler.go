package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is implemented by backing stores that can report liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler. checks may be empty.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			components[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	respondWithJSON(w, status, map[string]interface{}{
		"status":     overall,
		"components": components,
	})
}
