package models

import "time"

// WSChatMessage is an inbound websocket frame: same shape as ChatRequest.
type WSChatMessage struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// WSChatResponse is the reply frame for a websocket chat message.
type WSChatResponse struct {
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// WSError is sent when a websocket chat message cannot be processed.
type WSError struct {
	Error string `json:"error"`
}
