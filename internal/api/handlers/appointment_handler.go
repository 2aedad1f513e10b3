package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// AppointmentService defines the interface for patient booking operations
type AppointmentService interface {
	BookAppointment(ctx context.Context, request *entities.AppointmentRequest) (*entities.AppointmentConfirmation, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

type bookingResponse struct {
	Success bool `json:"success"`
	*entities.AppointmentConfirmation
}

// BookAppointment handles POST /api/appointment
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var request entities.AppointmentRequest
	if err := decodeJSON(r, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	confirmation, err := h.service.BookAppointment(r.Context(), &request)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, bookingResponse{Success: true, AppointmentConfirmation: confirmation})
}
