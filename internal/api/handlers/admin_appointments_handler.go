package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// AdminActorHeader names the dashboard user recorded in the audit log
const AdminActorHeader = "X-Admin-User"

// AdminAppointmentService defines the interface for dashboard appointment operations
type AdminAppointmentService interface {
	ListAppointments(ctx context.Context) ([]entities.Appointment, error)
	UpdateAppointment(ctx context.Context, rowID, status string, doctorNotes *string, actor string) (interface{}, error)
	AppointmentHistory(ctx context.Context, rowID string) ([]*entities.AuditEntry, error)
}

// AdminAppointmentsHandler handles the admin dashboard appointment endpoints
type AdminAppointmentsHandler struct {
	service AdminAppointmentService
}

// NewAdminAppointmentsHandler creates a new admin appointments handler
func NewAdminAppointmentsHandler(service AdminAppointmentService) *AdminAppointmentsHandler {
	return &AdminAppointmentsHandler{service: service}
}

// updateAppointmentRequest keeps raw values so a JSON string can be told apart
// from a missing or non-string field
type updateAppointmentRequest struct {
	RowID       json.RawMessage `json:"rowId"`
	Status      json.RawMessage `json:"status"`
	DoctorNotes json.RawMessage `json:"doctorNotes"`
}

// ListAppointments handles GET /api/admin/appointments
func (h *AdminAppointmentsHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.service.ListAppointments(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
	})
}

// UpdateAppointment handles PATCH /api/admin/appointments
func (h *AdminAppointmentsHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req updateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var doctorNotes *string
	if notes, ok := rawString(req.DoctorNotes); ok {
		doctorNotes = &notes
	}

	data, err := h.service.UpdateAppointment(r.Context(), rawText(req.RowID), rawText(req.Status), doctorNotes, r.Header.Get(AdminActorHeader))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Appointment status updated successfully",
		"data":    data,
	})
}

// AppointmentHistory handles GET /api/admin/appointments/{rowId}/history
func (h *AdminAppointmentsHandler) AppointmentHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.AppointmentHistory(r.Context(), r.PathValue("rowId"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
	})
}

// rawString decodes raw when it holds a JSON string
func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// rawText returns a JSON string as-is and any other non-empty value as its JSON text.
// null, false, 0 and "" count as absent.
func rawText(raw json.RawMessage) string {
	if s, ok := rawString(raw); ok {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", "0":
		return ""
	}
	return string(trimmed)
}
