package mapper

import (
	"encoding/json"

	"deep-research-be/internal/entity"
	"deep-research-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type GraphNodeMapper struct{}

func NewGraphNodeMapper() *GraphNodeMapper {
	return &GraphNodeMapper{}
}

func (m *GraphNodeMapper) ToEntity(n *model.GraphNode) *entity.GraphNode {
	if n == nil {
		return nil
	}

	// Serialize driver-native JSON into a plain map for callers.
	var props map[string]interface{}
	if len(n.Properties) > 0 {
		_ = json.Unmarshal(n.Properties, &props)
	}

	return &entity.GraphNode{
		Id:         n.Id,
		UserId:     n.UserId,
		Label:      n.Label,
		Name:       n.Name,
		Summary:    n.Summary,
		Properties: props,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  optionalTime(n.UpdatedAt),
		DeletedAt:  deletedAtPtr(n.DeletedAt),
	}
}

func (m *GraphNodeMapper) ToModel(n *entity.GraphNode) *model.GraphNode {
	if n == nil {
		return nil
	}

	var props datatypes.JSON
	if len(n.Properties) > 0 {
		if raw, err := json.Marshal(n.Properties); err == nil {
			props = datatypes.JSON(raw)
		}
	}

	return &model.GraphNode{
		Id:         n.Id,
		UserId:     n.UserId,
		Label:      n.Label,
		Name:       n.Name,
		Summary:    n.Summary,
		Properties: props,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  valueTime(n.UpdatedAt),
		DeletedAt:  deletedAtValue(n.DeletedAt),
	}
}

type GraphNodeEmbeddingMapper struct{}

func NewGraphNodeEmbeddingMapper() *GraphNodeEmbeddingMapper {
	return &GraphNodeEmbeddingMapper{}
}

func (m *GraphNodeEmbeddingMapper) ToEntity(e *model.GraphNodeEmbedding) *entity.GraphNodeEmbedding {
	if e == nil {
		return nil
	}
	return &entity.GraphNodeEmbedding{
		Id:             e.Id,
		NodeId:         e.NodeId,
		Label:          e.Label,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *GraphNodeEmbeddingMapper) ToModel(e *entity.GraphNodeEmbedding) *model.GraphNodeEmbedding {
	if e == nil {
		return nil
	}
	return &model.GraphNodeEmbedding{
		Id:             e.Id,
		NodeId:         e.NodeId,
		Label:          e.Label,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}
