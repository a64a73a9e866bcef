package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

type ChatMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	Mode          string // "chat" | "research"
	ChatSessionId uuid.UUID
	DocumentId    *uuid.UUID // set when the message delivered a research report
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}
