package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// ChatService defines the interface for patient chat operations
type ChatService interface {
	Reply(ctx context.Context, message string) (*entities.ChatMessage, error)
}

// ChatHandler handles patient chat requests
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string                  `json:"response"`
	Metadata entities.TriageMetadata `json:"metadata"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.service.Reply(r.Context(), req.Message)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	resp := chatResponse{Response: reply.Content, Metadata: entities.UnknownTriage()}
	if reply.Metadata != nil {
		resp.Metadata = *reply.Metadata
	}
	respondWithJSON(w, http.StatusOK, resp)
}
