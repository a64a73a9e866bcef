package contract

import (
	"context"

	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GraphNodeRepository interface {
	Create(ctx context.Context, node *entity.GraphNode) error
	Update(ctx context.Context, node *entity.GraphNode) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GraphNode, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphNode, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
