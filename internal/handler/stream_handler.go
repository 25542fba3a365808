package handler

import (
	"resolution-rag-be/internal/pkg/logger"
	internalWS "resolution-rag-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler exposes the generation stream over a websocket.
type StreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStreamHandler(hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/query/ws", h.ServeWs)
}

// ServeWs upgrades the request and serves stream requests until the peer
// disconnects.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	remote := c.IP()
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StreamHandler", "Starting WebSocket session", map[string]interface{}{"remote": remote})
		internalWS.ServeWs(h.hub, conn)
		h.logger.Info("StreamHandler", "WebSocket session ended", map[string]interface{}{"remote": remote})
	})(c)
}
