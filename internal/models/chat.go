package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one recorded exchange: the user's message and the model's
// response. Rows are immutable once written.
type ChatTurn struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the payload sent to POST /api/chat. Model is optional and
// defaults to the primary model.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

type ChatResponse struct {
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

type BotIconRequest struct {
	IconURL string `json:"icon_url"`
}
