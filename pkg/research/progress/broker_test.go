package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	chatID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := broker.Subscribe(ctx, chatID)
	require.NoError(t, err)

	go func() {
		broker.Emit(Event{ChatID: chatID, Status: StatusStarting, CurrentStep: 0})
		broker.Emit(Event{ChatID: chatID, Status: StatusComplete, CurrentStep: 3, TotalSteps: 3})
	}()

	first := <-events
	assert.Equal(t, StatusStarting, first.Status)

	second := <-events
	assert.Equal(t, StatusComplete, second.Status)
	assert.Equal(t, 3, second.CurrentStep)
}

func TestEventsArriveInEmissionOrder(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	chatID := uuid.New()
	events, err := broker.Subscribe(context.Background(), chatID)
	require.NoError(t, err)

	emitted := []Event{
		{ChatID: chatID, Status: StatusStarting, CurrentStep: 0, TotalSteps: 5},
		{ChatID: chatID, Status: StatusGeneratingQueries, CurrentStep: 1, TotalSteps: 5},
		{ChatID: chatID, Status: StatusProcessingQuery, CurrentStep: 2, TotalSteps: 5},
		{ChatID: chatID, Status: StatusProcessingQuery, CurrentStep: 3, TotalSteps: 5},
		{ChatID: chatID, Status: StatusFinalizing, CurrentStep: 4, TotalSteps: 5},
		{ChatID: chatID, Status: StatusComplete, CurrentStep: 5, TotalSteps: 5},
	}
	go func() {
		for _, e := range emitted {
			broker.Emit(e)
		}
	}()

	var received []Event
	for e := range events {
		received = append(received, e)
	}

	require.Len(t, received, len(emitted))
	lastStep := -1
	for i, e := range received {
		assert.Equal(t, emitted[i].Status, e.Status)
		assert.Equal(t, emitted[i].CurrentStep, e.CurrentStep)
		assert.GreaterOrEqual(t, e.CurrentStep, lastStep)
		lastStep = e.CurrentStep
	}
	assert.True(t, IsTerminal(received[len(received)-1].Status))
	for _, e := range received[:len(received)-1] {
		assert.False(t, IsTerminal(e.Status))
	}
}

func TestChannelClosesAfterTerminalEvent(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	chatID := uuid.New()
	events, err := broker.Subscribe(context.Background(), chatID)
	require.NoError(t, err)

	go broker.Emit(Event{ChatID: chatID, Status: StatusError})

	event := <-events
	assert.Equal(t, StatusError, event.Status)

	select {
	case _, open := <-events:
		assert.False(t, open, "channel should be closed after a terminal event")
	case <-time.After(time.Second):
		t.Fatal("channel did not close after terminal event")
	}
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	chatID := uuid.New()
	// no subscriber yet: nothing retains this event
	broker.Emit(Event{ChatID: chatID, Status: StatusStarting})

	events, err := broker.Subscribe(context.Background(), chatID)
	require.NoError(t, err)

	select {
	case event := <-events:
		t.Fatalf("late subscriber should see nothing, got %q", event.Status)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTopicsArePartitionedPerChat(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	mine := uuid.New()
	other := uuid.New()

	events, err := broker.Subscribe(context.Background(), mine)
	require.NoError(t, err)

	go func() {
		broker.Emit(Event{ChatID: other, Status: StatusStarting})
		broker.Emit(Event{ChatID: mine, Status: StatusFinalizing})
	}()

	event := <-events
	assert.Equal(t, mine, event.ChatID)
	assert.Equal(t, StatusFinalizing, event.Status)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusComplete))
	assert.True(t, IsTerminal(StatusError))
	assert.False(t, IsTerminal(StatusStarting))
	assert.False(t, IsTerminal(StatusProcessingQuery))
}
