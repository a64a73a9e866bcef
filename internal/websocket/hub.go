package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"deep-research-be/internal/model"
	"deep-research-be/internal/pkg/logger"
	"deep-research-be/pkg/research/progress"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel is the shared Redis pub/sub channel that fans payloads out
// to every running instance. A target of "*" means broadcast.
const clusterChannel = "cluster_events"

// Hub routes server-side payloads (notifications, research progress) to
// websocket clients. A user may have several connections at once, every one
// of them gets a copy.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// nil when Redis is not configured; the hub then serves this
	// instance's connections only.
	rdb *redis.Client

	// instanceID tags cluster publishes so the origin instance does not
	// deliver its own payload twice.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.consumeCluster()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a notification to one user across all their devices and
// instances. Implements service.NotificationDelivery.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	h.deliverLocal(userID, data)
	h.publishCluster(userID.String(), data)
}

// Broadcast delivers a notification to every connected user.
func (h *Hub) Broadcast(notification model.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	h.deliverAll(data)
	h.publishCluster("*", data)
}

// SendProgress mirrors a research progress event to every device the owner
// has connected. Connection-bound SSE remains the primary stream; this keeps
// secondary devices informed.
func (h *Hub) SendProgress(userID uuid.UUID, event progress.Event) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "research_progress",
		"data": event,
	})
	h.deliverLocal(userID, data)
	h.publishCluster(userID.String(), data)
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.push(client, data)
	}
}

func (h *Hub) deliverAll(data []byte) {
	h.mu.RLock()
	var all []*Client
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	h.mu.RUnlock()

	for _, client := range all {
		h.push(client, data)
	}
}

// push attempts a non-blocking send. A full buffer means the client stopped
// draining; it gets kicked and the channel is closed by the unregister path.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, disconnecting", map[string]interface{}{"user_id": client.UserID})
		h.unregister <- client
	}
}

func (h *Hub) publishCluster(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"origin":         h.instanceID,
		"target_user_id": target,
		"message":        json.RawMessage(data),
	})
	h.rdb.Publish(context.Background(), clusterChannel, payload)
}

// consumeCluster forwards cluster payloads to locally connected targets.
func (h *Hub) consumeCluster() {
	pubsub := h.rdb.Subscribe(context.Background(), clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin       string          `json:"origin"`
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		// Local delivery already happened on the origin instance.
		if payload.Origin == h.instanceID {
			continue
		}

		if payload.TargetUserID == "*" {
			h.deliverAll(payload.Message)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, payload.Message)
	}
}
