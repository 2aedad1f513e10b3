package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// AdminAuthService defines the interface for admin login
type AdminAuthService interface {
	Login(ctx context.Context, username, password string) (*entities.AdminSession, error)
}

// AdminAuthHandler handles admin login requests
type AdminAuthHandler struct {
	service AdminAuthService
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(service AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
	*entities.AdminSession
}

// Login handles POST /api/admin/login
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{Success: true, AdminSession: session})
}
