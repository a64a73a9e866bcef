package entity

import (
	"time"

	"github.com/google/uuid"
)

// Citation is a web source referenced by a research report.
type Citation struct {
	Title string `json:"title"`
	Url   string `json:"url"`
}

// Document is a persisted artifact (currently only research reports).
type Document struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	ChatSessionId *uuid.UUID
	Title         string
	Content       string
	Kind          string
	Citations     []Citation
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}
