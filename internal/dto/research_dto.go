package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartResearchRequest struct {
	Query         string `json:"query" validate:"required"`
	MaxSubQueries int    `json:"max_sub_queries" validate:"omitempty,min=1,max=10"`
}

type StartResearchResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
}

// ProgressEventDTO is the wire form of a research progress update,
// streamed over SSE and mirrored into websocket notifications.
type ProgressEventDTO struct {
	ChatId      uuid.UUID `json:"chat_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	CurrentStep int       `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	Timestamp   time.Time `json:"timestamp"`
}

type ResearchRunResponse struct {
	ChatId      uuid.UUID `json:"chat_id"`
	Status      string    `json:"status"`
	CurrentStep int       `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	StartedAt   time.Time `json:"started_at"`
}
