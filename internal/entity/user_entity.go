package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id         uuid.UUID
	FullName   string
	Email      string
	Password   string // bcrypt hash; empty for OAuth-only accounts
	Provider   string // "local" | "google"
	ProviderId string
	AvatarUrl  string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
}
