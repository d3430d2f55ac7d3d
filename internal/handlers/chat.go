package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
)

type chatService interface {
	Send(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.ChatTurn, error)
	DeleteHistory(ctx context.Context, userID uuid.UUID) error
}

type modelLister interface {
	AvailableModels() []string
}

type ChatHandler struct {
	chatService chatService
	models      modelLister
}

func NewChatHandler(chat chatService, models modelLister) *ChatHandler {
	return &ChatHandler{chatService: chat, models: models}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	resp, err := h.chatService.Send(r.Context(), userID, req)
	if err != nil {
		log.Printf("Chat send failed for user %s: %v", userID, err)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History returns the caller's full turn list, newest first. An empty
// history is an empty JSON array, not null.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	turns, err := h.chatService.History(r.Context(), userID)
	if err != nil {
		log.Printf("History fetch failed for user %s: %v", userID, err)
		handleServiceError(w, r, err)
		return
	}

	if turns == nil {
		turns = []models.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (h *ChatHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.chatService.DeleteHistory(r.Context(), userID); err != nil {
		log.Printf("History delete failed for user %s: %v", userID, err)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat history deleted successfully"})
}

func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.models.AvailableModels())
}
