package service

import (
	"context"
	"fmt"
	"strings"

	"deep-research-be/internal/constant"
	"deep-research-be/internal/dto"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"
	"deep-research-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// historyWindow caps how many prior messages feed the direct chat prompt.
const historyWindow = 20

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) ([]dto.ChatSessionResponse, error)
	RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RenameChatSessionRequest) (*dto.ChatSessionResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.ChatMessageResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory      unitofwork.RepositoryFactory
	llmProvider     llm.LLMProvider
	researchService IResearchService
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	researchService IResearchService,
) IChatService {
	return &chatService{
		uowFactory:      uowFactory,
		llmProvider:     llmProvider,
		researchService: researchService,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &entity.ChatSession{UserId: userId, Title: title}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return toChatSessionResponse(session), nil
}

func (s *chatService) GetSessions(ctx context.Context, userId uuid.UUID) ([]dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, *toChatSessionResponse(session))
	}
	return res, nil
}

func (s *chatService) RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RenameChatSessionRequest) (*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	session.Title = req.Title
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return toChatSessionResponse(session), nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]dto.ChatMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		res = append(res, toChatMessageResponse(message))
	}
	return res, nil
}

func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = constant.ChatModeDirect
	}

	userMessage := &entity.ChatMessage{
		Chat:          req.Message,
		Role:          constant.ChatMessageRoleUser,
		Mode:          mode,
		ChatSessionId: session.Id,
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	if mode == constant.ChatModeResearch {
		return s.startResearchTurn(ctx, uow, session, userId, req)
	}
	return s.directChatTurn(ctx, uow, session, req.Message)
}

// directChatTurn answers the message in a single model call over the
// recent session history.
func (s *chatService) directChatTurn(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, message string) (*dto.SendChatResponse, error) {
	history, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow},
	)
	if err != nil {
		return nil, err
	}

	answer, err := s.llmProvider.Chat(ctx, buildChatHistory(history))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	assistantMessage := &entity.ChatMessage{
		Chat:          answer,
		Role:          constant.ChatMessageRoleModel,
		Mode:          constant.ChatModeDirect,
		ChatSessionId: session.Id,
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		SessionId: session.Id,
		Message:   toChatMessageResponse(assistantMessage),
	}, nil
}

// startResearchTurn kicks off a background research run and returns an
// acknowledgement message immediately. The report lands later as a new
// assistant message carrying a document reference.
func (s *chatService) startResearchTurn(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if err := s.researchService.StartResearch(ctx, userId, session.Id, req.Message, req.MaxSubQueries); err != nil {
		return nil, err
	}

	ack := &entity.ChatMessage{
		Chat:          "Research started. I will post the report here when it is ready.",
		Role:          constant.ChatMessageRoleModel,
		Mode:          constant.ChatModeResearch,
		ChatSessionId: session.Id,
	}
	if err := uow.ChatMessageRepository().Create(ctx, ack); err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		SessionId: session.Id,
		Message:   toChatMessageResponse(ack),
	}, nil
}

func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}
	return session, nil
}

// buildChatHistory maps stored messages (newest first) into the provider
// format, oldest first, with the system prompt in front.
func buildChatHistory(messages []*entity.ChatMessage) []llm.Message {
	history := make([]llm.Message, 0, len(messages)+1)
	history = append(history, llm.Message{
		Role:    "system",
		Content: constant.DirectChatSystemPromptV1,
	})
	for i := len(messages) - 1; i >= 0; i-- {
		role := "user"
		if messages[i].Role == constant.ChatMessageRoleModel {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: messages[i].Chat})
	}
	return history
}

func toChatSessionResponse(session *entity.ChatSession) *dto.ChatSessionResponse {
	updatedAt := session.CreatedAt
	if session.UpdatedAt != nil {
		updatedAt = *session.UpdatedAt
	}
	return &dto.ChatSessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func toChatMessageResponse(message *entity.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		Id:         message.Id,
		Role:       message.Role,
		Content:    message.Chat,
		Mode:       message.Mode,
		DocumentId: message.DocumentId,
		CreatedAt:  message.CreatedAt,
	}
}
