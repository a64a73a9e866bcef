package unitofwork

import (
	"context"

	"deep-research-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	DocumentRepository() contract.DocumentRepository
	GraphNodeRepository() contract.GraphNodeRepository
	GraphNodeEmbeddingRepository() contract.GraphNodeEmbeddingRepository
}
