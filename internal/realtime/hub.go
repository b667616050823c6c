package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-reserve/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains resource_id -> set of connections and broadcasts reservation
// events. With Redis configured, events go through pub/sub so every instance
// delivers them to its own watchers.
type Hub struct {
	// resourceID -> map[clientID]*Client
	rooms    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func()
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher publishes to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishResourceEvent(resourceID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to resource channels.
type RedisSubscriber interface {
	SubscribeResource(resourceID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. redisPub and redisSub may be nil for a
// single-instance deployment.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a resource room. The first client starts the Redis subscription.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.ResourceID] == nil {
		h.rooms[c.ResourceID] = make(map[string]*Client)
		if h.redisSub != nil {
			resourceID := c.ResourceID
			cancel, err := h.redisSub.SubscribeResource(resourceID, func(event string, payload []byte) {
				h.Broadcast(resourceID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("redis subscribe failed", zap.Error(err), zap.String("resource_id", resourceID.String()))
			} else {
				h.subs[resourceID] = cancel
			}
		}
	}
	h.rooms[c.ResourceID][c.ID] = c
	h.logger.Debug("client watching resource", zap.String("client_id", c.ID), zap.String("resource_id", c.ResourceID.String()))
}

// Unregister removes a client. The last client out cancels the Redis subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.rooms[c.ResourceID]
	if !ok {
		return
	}
	if _, ok := m[c.ID]; !ok {
		return
	}
	delete(m, c.ID)
	close(c.send)
	if len(m) == 0 {
		delete(h.rooms, c.ResourceID)
		if cancel, ok := h.subs[c.ResourceID]; ok {
			cancel()
			delete(h.subs, c.ResourceID)
		}
	}
	h.logger.Debug("client left resource", zap.String("client_id", c.ID), zap.String("resource_id", c.ResourceID.String()))
}

// Broadcast sends a message to local clients watching resourceID. Slow
// clients with a full buffer miss the message.
func (h *Hub) Broadcast(resourceID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal broadcast payload", zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[resourceID] {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Publish delivers a reservation event to watchers of its resource. With
// Redis it only publishes; the subscription performs the local broadcast.
func (h *Hub) Publish(_ context.Context, ev models.ReservationEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("marshal reservation event", zap.Error(err))
		return
	}
	if h.redis != nil {
		if err := h.redis.PublishResourceEvent(ev.ResourceID, string(ev.Type), data); err != nil {
			h.logger.Warn("redis publish failed, broadcasting locally", zap.Error(err))
			h.Broadcast(ev.ResourceID, string(ev.Type), json.RawMessage(data))
		}
		return
	}
	h.Broadcast(ev.ResourceID, string(ev.Type), json.RawMessage(data))
}

// WatcherCount returns the number of local connections watching a resource.
func (h *Hub) WatcherCount(resourceID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[resourceID])
}
