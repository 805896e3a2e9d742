package api

import (
	"time"

	"github.com/google/uuid"
)

// Message is one role-tagged fragment of conversation context as it appears
// on the wire. Role is "system", "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message             string    `json:"message"`
	Model               string    `json:"model,omitempty"`
	ConversationHistory []Message `json:"conversation_history,omitempty"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	MessageID string `json:"message_id,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HistoryQuery struct {
	Limit int `schema:"limit"`
}

type HistoryItem struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ModelInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}
