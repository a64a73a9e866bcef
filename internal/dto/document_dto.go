package dto

import (
	"time"

	"github.com/google/uuid"

	"deep-research-be/internal/entity"
)

type DocumentResponse struct {
	Id        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Kind      string            `json:"kind"`
	Content   string            `json:"content"`
	Citations []entity.Citation `json:"citations"`
	CreatedAt time.Time         `json:"created_at"`
}

type DocumentListItemResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
