package mapper

import (
	"deep-research-be/internal/entity"
	"deep-research-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: optionalTime(s.UpdatedAt),
		DeletedAt: deletedAtPtr(s.DeletedAt),
	}
}

func (m *ChatMapper) SessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: valueTime(s.UpdatedAt),
		DeletedAt: deletedAtValue(s.DeletedAt),
	}
}

func (m *ChatMapper) MessageToEntity(c *model.ChatMessage) *entity.ChatMessage {
	if c == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:            c.Id,
		Chat:          c.Chat,
		Role:          c.Role,
		Mode:          c.Mode,
		ChatSessionId: c.ChatSessionId,
		DocumentId:    c.DocumentId,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     optionalTime(c.UpdatedAt),
		DeletedAt:     deletedAtPtr(c.DeletedAt),
	}
}

func (m *ChatMapper) MessageToModel(c *entity.ChatMessage) *model.ChatMessage {
	if c == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:            c.Id,
		Chat:          c.Chat,
		Role:          c.Role,
		Mode:          c.Mode,
		ChatSessionId: c.ChatSessionId,
		DocumentId:    c.DocumentId,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     valueTime(c.UpdatedAt),
		DeletedAt:     deletedAtValue(c.DeletedAt),
	}
}
