package handlers

import (
	"context"
	"net/http"
)

// DiagnosticsService defines the interface for table diagnostics
type DiagnosticsService interface {
	ListTables(ctx context.Context) (interface{}, error)
}

// DiagnosticsHandler reports the action tables visible to the configured key
type DiagnosticsHandler struct {
	service DiagnosticsService
}

// NewDiagnosticsHandler creates a new diagnostics handler
func NewDiagnosticsHandler(service DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{service: service}
}

// Diagnostics handles GET /api/admin/diagnostics
func (h *DiagnosticsHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"tables": tables,
	})
}
