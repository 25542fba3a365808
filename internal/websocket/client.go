package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub. Each
// text frame it reads is a StreamRequest; the answer frames go out through
// Send.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ID identifies the connection in logs.
	ID string

	// Buffered channel of outbound messages.
	Send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	sessionID    string
	streamCancel context.CancelFunc
	streams      sync.WaitGroup
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		Hub:    hub,
		Conn:   conn,
		ID:     uuid.NewString(),
		Send:   make(chan []byte, 256),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SessionID is the session of the latest request on this connection.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// cancelStream stops the running generation, if any.
func (c *Client) cancelStream() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamCancel == nil {
		return false
	}
	c.streamCancel()
	c.streamCancel = nil
	return true
}

// readPump reads requests until the peer goes away, then cancels the
// connection context and lets the session expire if it is already idle.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.streams.Wait()
		c.Hub.remove(c)
		c.Conn.Close()
		if sessionID := c.SessionID(); sessionID != "" && c.Hub.sessions != nil {
			c.Hub.sessions.EvictIfInactive(sessionID)
		}
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"connection": c.ID, "error": err.Error()})
			}
			return
		}

		var req dto.StreamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendError("", "Solicitud inválida")
			continue
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			c.sendError("", "Solicitud inválida: user_session_uuid es requerido")
			continue
		}
		c.start(&req)
	}
}

// start replaces the running stream of this connection with a new one.
func (c *Client) start(req *dto.StreamRequest) {
	c.mu.Lock()
	if c.streamCancel != nil {
		c.streamCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.streamCancel = cancel
	c.sessionID = req.UserSessionUuid
	c.mu.Unlock()

	c.Hub.claim(c, req.UserSessionUuid)

	c.streams.Add(1)
	go func() {
		defer c.streams.Done()
		defer cancel()

		started := time.Now()
		err := c.Hub.streamer.Stream(ctx, req, func(frame dto.StreamFrame) error {
			return c.write(ctx, frame)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.Hub.logger.Error("Client", "Stream failed", map[string]interface{}{
				"connection": c.ID,
				"session":    req.UserSessionUuid,
				"error":      err.Error(),
			})
			c.sendError("", err.Error())
			return
		}
		c.Hub.logger.Info("Client", "Stream finished", map[string]interface{}{
			"connection": c.ID,
			"session":    req.UserSessionUuid,
			"cancelled":  ctx.Err() != nil,
			"duration":   time.Since(started).Seconds(),
		})
	}()
}

func (c *Client) write(ctx context.Context, frame dto.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	select {
	case c.Send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) sendError(responseUuid, message string) {
	_ = c.write(c.ctx, dto.StreamFrame{
		ResponseUuid: responseUuid,
		Content:      dto.StreamError{Key: constant.MessageErrorKey, Error: message},
	})
}

// writePump pumps queued frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.cancel()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
