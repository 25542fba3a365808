package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const claimsChannel = "stream_claims"

// Streamer produces the generation frames for one request.
type Streamer interface {
	Stream(ctx context.Context, req *dto.StreamRequest, emit func(dto.StreamFrame) error) error
}

// SessionEvictor drops a session whose inactivity window has passed.
type SessionEvictor interface {
	EvictIfInactive(sessionID string) bool
}

// Hub tracks the open stream connections. A session answers on one
// connection at a time: when a new stream claims a session, every other
// stream for it is cancelled, on this instance and, through Redis, on the
// others.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance claims; nil runs standalone.
	rdb        *redis.Client
	instanceID string

	streamer Streamer
	sessions SessionEvictor
	logger   logger.ILogger
}

func NewHub(rdb *redis.Client, streamer Streamer, sessions SessionEvictor, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		streamer:   streamer,
		sessions:   sessions,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"connection": client.ID})

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"connection": client.ID, "session": client.SessionID()})
		}
	}
}

func (h *Hub) add(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// claim cancels the streams of sessionID held by other connections.
func (h *Hub) claim(owner *Client, sessionID string) {
	h.cancelLocal(owner, sessionID)

	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(streamClaim{SessionID: sessionID, InstanceID: h.instanceID})
	if err := h.rdb.Publish(context.Background(), claimsChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to publish stream claim", map[string]interface{}{"session": sessionID, "error": err.Error()})
	}
}

func (h *Hub) cancelLocal(owner *Client, sessionID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == owner || c.SessionID() != sessionID {
			continue
		}
		if c.cancelStream() {
			h.logger.Info("Hub", "Stream superseded by a newer connection", map[string]interface{}{"connection": c.ID, "session": sessionID})
		}
	}
}

type streamClaim struct {
	SessionID  string `json:"session_id"`
	InstanceID string `json:"instance_id"`
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, claimsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var claim streamClaim
			if err := json.Unmarshal([]byte(msg.Payload), &claim); err != nil {
				h.logger.Warn("Hub", "Redis claim parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if claim.InstanceID == h.instanceID {
				continue
			}
			h.cancelLocal(nil, claim.SessionID)
		}
	}
}
