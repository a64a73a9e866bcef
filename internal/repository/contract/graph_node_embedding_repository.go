package contract

import (
	"context"

	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredGraphNodeEmbedding wraps GraphNodeEmbedding with its similarity score
type ScoredGraphNodeEmbedding struct {
	Embedding  *entity.GraphNodeEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type GraphNodeEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.GraphNodeEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.GraphNodeEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNodeId(ctx context.Context, nodeId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GraphNodeEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphNodeEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarByLabel returns the nearest embedded chunks carrying the
	// given label, with similarity scores filtered by threshold. An empty
	// label searches across all labels.
	SearchSimilarByLabel(ctx context.Context, embedding []float32, label string, limit int, userId uuid.UUID, threshold float64) ([]*ScoredGraphNodeEmbedding, error)
}
