package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"deep-research-be/internal/dto"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"
	"deep-research-be/pkg/embedding"
	"deep-research-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking tuned for text-embedding context limits: ~1500 chars per chunk
// with 200 chars of overlap.
const (
	embedChunkSize    = 1500
	embedChunkOverlap = 200
)

type IIngestService interface {
	Consume(ctx context.Context) error
}

type ingestService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IIngestService {
	return &ingestService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedGraphNodeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embedding for graph node %s", payload.NodeId)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	node, err := uow.GraphNodeRepository().FindOne(ctx, specification.ByID{ID: payload.NodeId})
	if err != nil {
		log.Printf("[ERROR] Failed to get graph node %s: %v", payload.NodeId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if node == nil {
		log.Printf("[WARN] Graph node not found, skipping: %s", payload.NodeId)
		msg.Ack() // Node deleted since the job was queued. Ack.
		return
	}

	content := buildNodeDocument(node)
	chunks := utils.SplitText(content, embedChunkSize, embedChunkOverlap)
	log.Printf("[INFO] Node %s split into %d chunks", payload.NodeId, len(chunks))

	var newEmbeddings []*entity.GraphNodeEmbedding
	for i, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of node %s: %v", i, payload.NodeId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.GraphNodeEmbedding{
			Id:             uuid.New(),
			NodeId:         node.Id,
			Label:          node.Label,
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.GraphNodeEmbeddingRepository().DeleteByNodeId(ctx, node.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.GraphNodeEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Graph node indexed: %d chunks for node %s", len(newEmbeddings), payload.NodeId)
	msg.Ack()
}

// buildNodeDocument flattens a node into the text that gets embedded.
// Properties come sorted so re-embedding unchanged content is stable.
func buildNodeDocument(node *entity.GraphNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n%s\n", node.Label, node.Name, node.Summary)

	if len(node.Properties) > 0 {
		keys := make([]string, 0, len(node.Properties))
		for k := range node.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\nProperties:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, node.Properties[k])
		}
	}
	return b.String()
}
