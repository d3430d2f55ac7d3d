package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
)

type settingsService interface {
	SetBotIcon(ctx context.Context, iconURL string) error
	GetBotIcon(ctx context.Context) (string, error)
}

type AdminHandler struct {
	settings settingsService
}

func NewAdminHandler(settings settingsService) *AdminHandler {
	return &AdminHandler{settings: settings}
}

func (h *AdminHandler) UpdateBotIcon(w http.ResponseWriter, r *http.Request) {
	if middleware.GetRole(r.Context()) != "admin" {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Admin access required", r))
		return
	}

	var req models.BotIconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.IconURL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "icon_url is required", r))
		return
	}

	if err := h.settings.SetBotIcon(r.Context(), req.IconURL); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Bot icon updated successfully"})
}

func (h *AdminHandler) GetBotIcon(w http.ResponseWriter, r *http.Request) {
	iconURL, err := h.settings.GetBotIcon(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"icon_url": iconURL})
}
