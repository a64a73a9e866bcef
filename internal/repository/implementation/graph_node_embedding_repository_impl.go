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
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type GraphNodeEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GraphNodeEmbeddingMapper
}

func NewGraphNodeEmbeddingRepository(db *gorm.DB) contract.GraphNodeEmbeddingRepository {
	return &GraphNodeEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewGraphNodeEmbeddingMapper(),
	}
}

func (r *GraphNodeEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GraphNodeEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.GraphNodeEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *GraphNodeEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.GraphNodeEmbedding) error {
	models := make([]*model.GraphNodeEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *GraphNodeEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GraphNodeEmbedding{}, id).Error
}

func (r *GraphNodeEmbeddingRepositoryImpl) DeleteByNodeId(ctx context.Context, nodeId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("node_id = ?", nodeId).Delete(&model.GraphNodeEmbedding{}).Error
}

func (r *GraphNodeEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GraphNodeEmbedding, error) {
	var m model.GraphNodeEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GraphNodeEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphNodeEmbedding, error) {
	var models []*model.GraphNodeEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GraphNodeEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *GraphNodeEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.GraphNodeEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarByLabel returns embedded chunks with similarity scores, filtered by threshold
func (r *GraphNodeEmbeddingRepositoryImpl) SearchSimilarByLabel(ctx context.Context, embedding []float32, label string, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredGraphNodeEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// Raw query to get similarity score along with embeddings
	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.GraphNodeEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("graph_node_embeddings").
		Select("graph_node_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN graph_nodes ON graph_nodes.id = graph_node_embeddings.node_id").
		Where("graph_nodes.user_id = ?", userId).
		Where("graph_node_embeddings.deleted_at IS NULL").
		Where("graph_nodes.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)

	if label != "" {
		query = query.Where("graph_node_embeddings.label = ?", label)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredGraphNodeEmbedding, len(results))
	for i, res := range results {
		e := r.mapper.ToEntity(&res.GraphNodeEmbedding)
		scored[i] = &contract.ScoredGraphNodeEmbedding{
			Embedding:  e,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
