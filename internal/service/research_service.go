package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deep-research-be/internal/config"
	"deep-research-be/internal/constant"
	"deep-research-be/internal/dto"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/pkg/logger"
	"deep-research-be/internal/pkg/mailer"
	"deep-research-be/internal/repository/memory"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"
	"deep-research-be/internal/websocket"
	"deep-research-be/pkg/embedding"
	"deep-research-be/pkg/events"
	"deep-research-be/pkg/nats"
	"deep-research-be/pkg/research"
	"deep-research-be/pkg/research/progress"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// runTimeout bounds one research run end to end.
const runTimeout = 10 * time.Minute

const EventResearchCompleted = "RESEARCH_COMPLETED"

type IResearchService interface {
	StartResearch(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, query string, maxSubQueries int) error
	GetRun(chatId uuid.UUID) (*dto.ResearchRunResponse, error)
	Subscribe(ctx context.Context, chatId uuid.UUID) (<-chan progress.Event, error)
}

type researchService struct {
	cfg        *config.Config
	uowFactory unitofwork.RepositoryFactory
	runRepo    *memory.RunRepository
	broker     *progress.Broker
	hub        *websocket.Hub
	publisher  *nats.Publisher
	email      mailer.IEmailService
	log        logger.ILogger

	embedder    embedding.EmbeddingProvider
	planner     *research.Planner
	web         *research.WebWorker
	reasoner    *research.Reasoner
	synthesizer *research.Synthesizer
}

func NewResearchService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	runRepo *memory.RunRepository,
	broker *progress.Broker,
	hub *websocket.Hub,
	publisher *nats.Publisher,
	email mailer.IEmailService,
	log logger.ILogger,
	embedder embedding.EmbeddingProvider,
	planner *research.Planner,
	web *research.WebWorker,
	reasoner *research.Reasoner,
	synthesizer *research.Synthesizer,
) IResearchService {
	return &researchService{
		cfg:         cfg,
		uowFactory:  uowFactory,
		runRepo:     runRepo,
		broker:      broker,
		hub:         hub,
		publisher:   publisher,
		email:       email,
		log:         log,
		embedder:    embedder,
		planner:     planner,
		web:         web,
		reasoner:    reasoner,
		synthesizer: synthesizer,
	}
}

func (s *researchService) StartResearch(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, query string, maxSubQueries int) error {
	if strings.TrimSpace(query) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query must not be empty")
	}

	if state, found := s.runRepo.Get(sessionId.String()); found && !progress.IsTerminal(state.Status) {
		return fiber.NewError(fiber.StatusConflict, "a research run is already active for this session")
	}

	if maxSubQueries <= 0 {
		maxSubQueries = s.cfg.Research.MaxSubQueries
	}
	if maxSubQueries > research.MaxSubQueriesCeiling {
		maxSubQueries = research.MaxSubQueriesCeiling
	}

	state := &research.RunState{
		ChatID:    sessionId,
		UserID:    userId,
		Query:     query,
		Status:    progress.StatusStarting,
		StartedAt: time.Now(),
	}
	s.runRepo.Save(state)

	req := research.Request{
		Query:         query,
		MaxSubQueries: maxSubQueries,
		ChatID:        sessionId,
		UserID:        userId,
	}
	go s.executeRun(req)

	return nil
}

func (s *researchService) GetRun(chatId uuid.UUID) (*dto.ResearchRunResponse, error) {
	state, found := s.runRepo.Get(chatId.String())
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "no research run found for this session")
	}
	return &dto.ResearchRunResponse{
		ChatId:      state.ChatID,
		Status:      state.Status,
		CurrentStep: state.CurrentStep,
		TotalSteps:  state.TotalSteps,
		StartedAt:   state.StartedAt,
	}, nil
}

func (s *researchService) Subscribe(ctx context.Context, chatId uuid.UUID) (<-chan progress.Event, error) {
	return s.broker.Subscribe(ctx, chatId)
}

// executeRun drives one run in the background. The request context is
// deliberately detached: the HTTP request that triggered the run has
// already returned.
func (s *researchService) executeRun(req research.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	orchestrator := s.buildOrchestrator(req.UserID)
	sink := &runSink{service: s}

	result, err := orchestrator.Run(ctx, req, sink)
	if err != nil {
		s.log.Error("research", "research run failed", map[string]interface{}{
			"chat_session_id": req.ChatID.String(),
			"error":           err.Error(),
		})
		s.persistFailure(req)
		return
	}

	if err := s.persistReport(ctx, req, result); err != nil {
		s.log.Error("research", "failed to persist research report", map[string]interface{}{
			"chat_session_id": req.ChatID.String(),
			"error":           err.Error(),
		})
	}
}

// buildOrchestrator assembles the per-run pipeline. Only the retriever is
// run-specific: its graph searcher is scoped to the run owner.
func (s *researchService) buildOrchestrator(userId uuid.UUID) *research.Orchestrator {
	searcher := &userGraphSearcher{
		uowFactory: s.uowFactory,
		userId:     userId,
		threshold:  s.cfg.Research.SimThreshold,
	}
	retriever := research.NewRetriever(s.embedder, searcher, constant.DefaultGraphLabels, s.cfg.Research.GraphLimit)
	return research.NewOrchestrator(s.planner, retriever, s.web, s.reasoner, s.synthesizer)
}

// persistReport stores the report document and the assistant message in one
// transaction, then fans out the completion event, websocket push aside.
func (s *researchService) persistReport(ctx context.Context, req research.Request, result *research.RunResult) error {
	citations := make([]entity.Citation, 0, len(result.Report.Citations))
	for _, src := range result.Report.Citations {
		citations = append(citations, entity.Citation{Title: src.Title, Url: src.URL})
	}

	document := &entity.Document{
		UserId:        req.UserID,
		ChatSessionId: &req.ChatID,
		Title:         reportTitle(req.Query),
		Content:       result.Report.Text,
		Kind:          constant.DocumentKindResearchReport,
		Citations:     citations,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return err
	}

	message := &entity.ChatMessage{
		Chat:          result.Report.Text,
		Role:          constant.ChatMessageRoleModel,
		Mode:          constant.ChatModeResearch,
		ChatSessionId: req.ChatID,
		DocumentId:    &document.Id,
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.notifyCompletion(ctx, req, document)
	return nil
}

// persistFailure leaves an apologetic assistant message so the session does
// not end on a silent user turn.
func (s *researchService) persistFailure(req research.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	message := &entity.ChatMessage{
		Chat:          "Sorry, the research run failed before a report could be produced. Please try again.",
		Role:          constant.ChatMessageRoleModel,
		Mode:          constant.ChatModeResearch,
		ChatSessionId: req.ChatID,
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		s.log.Error("research", "failed to persist failure message", map[string]interface{}{
			"chat_session_id": req.ChatID.String(),
			"error":           err.Error(),
		})
	}
}

func (s *researchService) notifyCompletion(ctx context.Context, req research.Request, document *entity.Document) {
	if s.publisher != nil {
		event := events.BaseEvent{
			Type: EventResearchCompleted,
			Data: map[string]interface{}{
				"user_id":         req.UserID.String(),
				"chat_session_id": req.ChatID.String(),
				"document_id":     document.Id.String(),
				"title":           document.Title,
			},
			OccurredAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error("research", "failed to publish completion event", map[string]interface{}{
				"chat_session_id": req.ChatID.String(),
				"error":           err.Error(),
			})
		}
	}

	if s.email == nil {
		return
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.UserID})
	if err != nil || user == nil {
		return
	}
	if err := s.email.SendReportReady(user.Email, document.Title, req.ChatID.String()); err != nil {
		s.log.Warn("research", "failed to send report-ready email", map[string]interface{}{
			"user_id": req.UserID.String(),
			"error":   err.Error(),
		})
	}
}

// runSink fans a progress event out to every consumer: the run registry
// snapshot, the per-chat broker topic, and the owner's websocket devices.
type runSink struct {
	service *researchService
}

func (r *runSink) Emit(event progress.Event) {
	s := r.service

	if state, found := s.runRepo.Get(event.ChatID.String()); found {
		state.Status = event.Status
		state.CurrentStep = event.CurrentStep
		state.TotalSteps = event.TotalSteps
		s.runRepo.Save(state)
	}

	s.broker.Emit(event)

	if state, found := s.runRepo.Get(event.ChatID.String()); found {
		s.hub.SendProgress(state.UserID, event)
	}
}

// userGraphSearcher adapts the embedding repository's pgvector search to
// the retriever's interface, resolving node names for presentable hits.
type userGraphSearcher struct {
	uowFactory unitofwork.RepositoryFactory
	userId     uuid.UUID
	threshold  float64
}

func (g *userGraphSearcher) SearchByLabel(ctx context.Context, queryEmbedding []float32, label string, limit int) ([]research.GraphHit, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.GraphNodeEmbeddingRepository().SearchSimilarByLabel(ctx, queryEmbedding, label, limit, g.userId, g.threshold)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}

	nodeIds := make([]uuid.UUID, 0, len(scored))
	seen := make(map[uuid.UUID]bool)
	for _, hit := range scored {
		if !seen[hit.Embedding.NodeId] {
			seen[hit.Embedding.NodeId] = true
			nodeIds = append(nodeIds, hit.Embedding.NodeId)
		}
	}

	nodes, err := uow.GraphNodeRepository().FindAll(ctx, specification.ByIDs{IDs: nodeIds})
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(nodes))
	for _, node := range nodes {
		names[node.Id] = node.Name
	}

	hits := make([]research.GraphHit, 0, len(scored))
	for _, item := range scored {
		hits = append(hits, research.GraphHit{
			Label:      item.Embedding.Label,
			Name:       names[item.Embedding.NodeId],
			Summary:    item.Embedding.Document,
			Similarity: item.Similarity,
		})
	}
	return hits, nil
}

// reportTitle derives a document title from the research query.
func reportTitle(query string) string {
	title := strings.TrimSpace(query)
	if len(title) > 80 {
		title = title[:77] + "..."
	}
	return fmt.Sprintf("Research Report: %s", title)
}
