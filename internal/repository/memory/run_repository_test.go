package memory

import (
	"testing"
	"time"

	"deep-research-be/pkg/research"
	"deep-research-be/pkg/research/progress"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepositorySaveAndGet(t *testing.T) {
	repo := NewRunRepository()
	chatID := uuid.New()

	_, found := repo.Get(chatID.String())
	assert.False(t, found)

	state := &research.RunState{
		ChatID:    chatID,
		UserID:    uuid.New(),
		Query:     "how do ivfflat indexes work",
		Status:    progress.StatusStarting,
		StartedAt: time.Now(),
	}
	repo.Save(state)

	got, found := repo.Get(chatID.String())
	require.True(t, found)
	assert.Equal(t, state.Query, got.Query)
	assert.Equal(t, progress.StatusStarting, got.Status)
}

func TestRunRepositorySaveOverwrites(t *testing.T) {
	repo := NewRunRepository()
	chatID := uuid.New()

	repo.Save(&research.RunState{ChatID: chatID, Status: progress.StatusStarting})
	repo.Save(&research.RunState{ChatID: chatID, Status: progress.StatusComplete, CurrentStep: 5, TotalSteps: 5})

	got, found := repo.Get(chatID.String())
	require.True(t, found)
	assert.Equal(t, progress.StatusComplete, got.Status)
	assert.Equal(t, 5, got.CurrentStep)
}

func TestRunRepositoryDelete(t *testing.T) {
	repo := NewRunRepository()
	chatID := uuid.New()

	repo.Save(&research.RunState{ChatID: chatID, Status: progress.StatusStarting})
	repo.Delete(chatID.String())

	_, found := repo.Get(chatID.String())
	assert.False(t, found)
}
