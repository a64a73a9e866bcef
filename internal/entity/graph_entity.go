package entity

import (
	"time"

	"github.com/google/uuid"
)

// GraphNode is a typed knowledge-graph node owned by a user.
type GraphNode struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Label      string // one of constant.GraphLabel*
	Name       string
	Summary    string
	Properties map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
}

// GraphNodeEmbedding is one embedded chunk of a node's text. The label is
// denormalized from the node so per-label vector search avoids a join on
// the hot path.
type GraphNodeEmbedding struct {
	Id             uuid.UUID
	NodeId         uuid.UUID
	Label          string
	Document       string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
}
