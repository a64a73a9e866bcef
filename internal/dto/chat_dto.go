package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
}

type ChatSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RenameChatSessionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// SendChatRequest carries one user turn. Mode selects the pipeline:
// "chat" answers directly from the model, "research" runs the full
// multi-step research flow.
type SendChatRequest struct {
	Message       string `json:"message" validate:"required"`
	Mode          string `json:"mode" validate:"omitempty,oneof=chat research"`
	MaxSubQueries int    `json:"max_sub_queries" validate:"omitempty,min=1,max=10"`
}

type ChatMessageResponse struct {
	Id         uuid.UUID  `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Mode       string     `json:"mode"`
	DocumentId *uuid.UUID `json:"document_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SendChatResponse struct {
	SessionId uuid.UUID           `json:"session_id"`
	Message   ChatMessageResponse `json:"message"`
}
