package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"deep-research-be/internal/constant"
	"deep-research-be/internal/entity"
	"deep-research-be/internal/repository/specification"
	"deep-research-be/internal/repository/unitofwork"
	"deep-research-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.GraphNodeRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Graph Node Embedding Repository", func(t *testing.T) {
		// Count implies the table and vector column exist
		count, err := uow.GraphNodeEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("GraphNodeEmbedding count: %d", count)
	})

	t.Run("Transactional Chat Session And Message", func(t *testing.T) {
		ctx := context.Background()

		user := &entity.User{
			Id:       uuid.New(),
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Provider: "local",
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		session := &entity.ChatSession{
			Id:     uuid.New(),
			UserId: user.Id,
			Title:  "Integration Session",
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		message := &entity.ChatMessage{
			Id:            uuid.New(),
			Chat:          "What is pgvector?",
			Role:          constant.ChatMessageRoleUser,
			Mode:          constant.ChatModeDirect,
			ChatSessionId: session.Id,
		}
		err = uow.ChatMessageRepository().Create(ctx, message)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// Read back outside the transaction
		found, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id})
		assert.NoError(t, err)
		assert.Len(t, found, 1)

		// Cleanup
		_ = uow.ChatMessageRepository().DeleteBySessionId(ctx, session.Id)
		_ = uow.ChatSessionRepository().Delete(ctx, session.Id)
		_ = uow.UserRepository().Delete(ctx, user.Id)
	})
}
