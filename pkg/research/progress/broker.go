package progress

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const topicPrefix = "research.progress."

// Broker fans progress events out to live subscribers. Topics are
// partitioned per chat session, so subscribers never have to filter out
// other runs' events. There is no buffering: a subscriber that attaches
// after an event was published never sees it.
type Broker struct {
	pubSub *gochannel.GoChannel
}

func NewBroker() *Broker {
	return &Broker{
		// Blocking until subscribers ack keeps publishes serialized per
		// topic. Without it gochannel hands each message to its own
		// goroutine and back-to-back events can arrive reordered.
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
	}
}

func topicFor(chatID uuid.UUID) string {
	return topicPrefix + chatID.String()
}

// Publish delivers the event to every current subscriber of its chat topic.
func (b *Broker) Publish(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubSub.Publish(topicFor(event.ChatID), msg)
}

// Emit publishes and drops the error; progress delivery must never fail a
// research run.
func (b *Broker) Emit(event Event) {
	if err := b.Publish(event); err != nil {
		log.Printf("[WARN] progress publish failed for chat %s: %v", event.ChatID, err)
	}
}

// Subscribe returns a channel of events for one chat session. The channel
// closes when the context is cancelled, the broker shuts down, or a
// terminal event has been delivered.
func (b *Broker) Subscribe(ctx context.Context, chatID uuid.UUID) (<-chan Event, error) {
	// Own cancel scope: once this subscriber is done (terminal event or
	// caller cancel) the watermill subscription must go away too, or its
	// unacked backlog would block future publishes on the topic.
	ctx, cancel := context.WithCancel(ctx)

	messages, err := b.pubSub.Subscribe(ctx, topicFor(chatID))
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer cancel()
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				log.Printf("[WARN] dropping malformed progress event: %v", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}

			if IsTerminal(event.Status) {
				return
			}
		}
	}()
	return out, nil
}

func (b *Broker) Close() error {
	return b.pubSub.Close()
}
