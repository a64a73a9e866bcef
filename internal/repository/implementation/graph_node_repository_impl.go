package implementation

import (
	"context"
	"errors"

	"deep-research-be/internal/entity"
	"deep-research-be/internal/mapper"
	"deep-research-be/internal/model"
	"deep-research-be/internal/repository/contract"
	"deep-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GraphNodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GraphNodeMapper
}

func NewGraphNodeRepository(db *gorm.DB) contract.GraphNodeRepository {
	return &GraphNodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewGraphNodeMapper(),
	}
}

func (r *GraphNodeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GraphNodeRepositoryImpl) Create(ctx context.Context, node *entity.GraphNode) error {
	m := r.mapper.ToModel(node)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*node = *r.mapper.ToEntity(m)
	return nil
}

func (r *GraphNodeRepositoryImpl) Update(ctx context.Context, node *entity.GraphNode) error {
	m := r.mapper.ToModel(node)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*node = *r.mapper.ToEntity(m)
	return nil
}

func (r *GraphNodeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GraphNode{}, id).Error
}

func (r *GraphNodeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GraphNode, error) {
	var m model.GraphNode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GraphNodeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphNode, error) {
	var models []*model.GraphNode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GraphNode, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *GraphNodeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GraphNode{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
