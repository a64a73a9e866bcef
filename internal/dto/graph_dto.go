package dto

import (
	"github.com/google/uuid"
)

type UpsertGraphNodeRequest struct {
	Label      string                 `json:"label" validate:"required,oneof=Concept Person Organization Event Source"`
	Name       string                 `json:"name" validate:"required,max=300"`
	Content    string                 `json:"content" validate:"required"`
	Properties map[string]interface{} `json:"properties"`
}

type GraphNodeResponse struct {
	Id         uuid.UUID              `json:"id"`
	Label      string                 `json:"label"`
	Name       string                 `json:"name"`
	Content    string                 `json:"content"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type GraphSearchRequest struct {
	Query string `json:"query" validate:"required"`
	Label string `json:"label" validate:"omitempty,oneof=Concept Person Organization Event Source"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type GraphSearchHit struct {
	Node       GraphNodeResponse `json:"node"`
	Similarity float64           `json:"similarity"`
}

type GraphSearchResponse struct {
	Hits []GraphSearchHit `json:"hits"`
}

// PublishEmbedGraphNodeMessage is the payload of an async embed job. The
// consumer re-reads the node, so only the id travels.
type PublishEmbedGraphNodeMessage struct {
	NodeId uuid.UUID `json:"node_id"`
}
