package service

import (
	"context"
	"encoding/json"
	"fmt"

	"deep-research-be/internal/config"
	"deep-research-be/internal/dto"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/pkg/logger"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"
	"deep-research-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGraphService interface {
	CreateNode(ctx context.Context, userId uuid.UUID, req *dto.UpsertGraphNodeRequest) (*dto.GraphNodeResponse, error)
	UpdateNode(ctx context.Context, userId uuid.UUID, nodeId uuid.UUID, req *dto.UpsertGraphNodeRequest) (*dto.GraphNodeResponse, error)
	GetNodes(ctx context.Context, userId uuid.UUID, label string, name string) ([]dto.GraphNodeResponse, error)
	DeleteNode(ctx context.Context, userId uuid.UUID, nodeId uuid.UUID) error
	SemanticSearch(ctx context.Context, userId uuid.UUID, req *dto.GraphSearchRequest) (*dto.GraphSearchResponse, error)
}

type graphService struct {
	cfg        *config.Config
	uowFactory unitofwork.RepositoryFactory
	publisher  message.Publisher
	embedder   embedding.EmbeddingProvider
	log        logger.ILogger
}

func NewGraphService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	publisher message.Publisher,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
) IGraphService {
	return &graphService{
		cfg:        cfg,
		uowFactory: uowFactory,
		publisher:  publisher,
		embedder:   embedder,
		log:        log,
	}
}

func (s *graphService) CreateNode(ctx context.Context, userId uuid.UUID, req *dto.UpsertGraphNodeRequest) (*dto.GraphNodeResponse, error) {
	node := &entity.GraphNode{
		UserId:     userId,
		Label:      req.Label,
		Name:       req.Name,
		Summary:    req.Content,
		Properties: req.Properties,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GraphNodeRepository().Create(ctx, node); err != nil {
		return nil, err
	}

	s.publishEmbedJob(node.Id)
	return toGraphNodeResponse(node), nil
}

func (s *graphService) UpdateNode(ctx context.Context, userId uuid.UUID, nodeId uuid.UUID, req *dto.UpsertGraphNodeRequest) (*dto.GraphNodeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	node, err := s.findOwnedNode(ctx, uow, userId, nodeId)
	if err != nil {
		return nil, err
	}

	node.Label = req.Label
	node.Name = req.Name
	node.Summary = req.Content
	node.Properties = req.Properties
	if err := uow.GraphNodeRepository().Update(ctx, node); err != nil {
		return nil, err
	}

	// Content changed, so the chunks in the vector index are stale.
	s.publishEmbedJob(node.Id)
	return toGraphNodeResponse(node), nil
}

func (s *graphService) GetNodes(ctx context.Context, userId uuid.UUID, label string, name string) ([]dto.GraphNodeResponse, error) {
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if label != "" {
		specs = append(specs, specification.ByLabel{Label: label})
	}
	if name != "" {
		specs = append(specs, specification.ByNodeName{Name: name})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	nodes, err := uow.GraphNodeRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]dto.GraphNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		res = append(res, *toGraphNodeResponse(node))
	}
	return res, nil
}

func (s *graphService) DeleteNode(ctx context.Context, userId uuid.UUID, nodeId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedNode(ctx, uow, userId, nodeId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.GraphNodeEmbeddingRepository().DeleteByNodeId(ctx, nodeId); err != nil {
		return err
	}
	if err := uow.GraphNodeRepository().Delete(ctx, nodeId); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *graphService) SemanticSearch(ctx context.Context, userId uuid.UUID, req *dto.GraphSearchRequest) (*dto.GraphSearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Research.GraphLimit
	}

	embeddingRes, err := s.embedder.Generate(req.Query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.GraphNodeEmbeddingRepository().SearchSimilarByLabel(
		ctx, embeddingRes.Embedding.Values, req.Label, limit, userId, s.cfg.Research.SimThreshold)
	if err != nil {
		return nil, err
	}

	res := &dto.GraphSearchResponse{Hits: []dto.GraphSearchHit{}}
	if len(scored) == 0 {
		return res, nil
	}

	nodeIds := make([]uuid.UUID, 0, len(scored))
	for _, hit := range scored {
		nodeIds = append(nodeIds, hit.Embedding.NodeId)
	}
	nodes, err := uow.GraphNodeRepository().FindAll(ctx, specification.ByIDs{IDs: nodeIds})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.GraphNode, len(nodes))
	for _, node := range nodes {
		byId[node.Id] = node
	}

	// One hit per node, keeping the best-scoring chunk. Results from the
	// repository are already ordered by similarity.
	seen := make(map[uuid.UUID]bool)
	for _, hit := range scored {
		node, ok := byId[hit.Embedding.NodeId]
		if !ok || seen[node.Id] {
			continue
		}
		seen[node.Id] = true
		res.Hits = append(res.Hits, dto.GraphSearchHit{
			Node:       *toGraphNodeResponse(node),
			Similarity: hit.Similarity,
		})
	}
	return res, nil
}

// publishEmbedJob queues async (re)embedding of a node. Failures only log:
// the node row is already committed, and the index catches up on the next
// update.
func (s *graphService) publishEmbedJob(nodeId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishEmbedGraphNodeMessage{NodeId: nodeId})
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(s.cfg.Keys.EmbedTopicName, msg); err != nil {
		s.log.Error("graph", "failed to publish embed job", map[string]interface{}{
			"node_id": nodeId.String(),
			"error":   err.Error(),
		})
	}
}

func (s *graphService) findOwnedNode(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, nodeId uuid.UUID) (*entity.GraphNode, error) {
	node, err := uow.GraphNodeRepository().FindOne(ctx,
		specification.ByID{ID: nodeId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "graph node not found")
	}
	return node, nil
}

func toGraphNodeResponse(node *entity.GraphNode) *dto.GraphNodeResponse {
	return &dto.GraphNodeResponse{
		Id:         node.Id,
		Label:      node.Label,
		Name:       node.Name,
		Content:    node.Summary,
		Properties: node.Properties,
	}
}
