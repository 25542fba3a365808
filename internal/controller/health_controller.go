package controller

import (
	"context"
	"time"

	"resolution-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	checks   map[string]Pinger
	sessions func() int
}

func NewHealthController(checks map[string]Pinger, sessions func() int) IHealthController {
	return &healthController{checks: checks, sessions: sessions}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

type healthResponse struct {
	Status         string            `json:"status"`
	Dependencies   map[string]string `json:"dependencies"`
	ActiveSessions int               `json:"active_sessions"`
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Status: "ok", Dependencies: make(map[string]string, len(c.checks))}
	for name, p := range c.checks {
		if err := p.Ping(pingCtx); err != nil {
			res.Status = "degraded"
			res.Dependencies[name] = err.Error()
			continue
		}
		res.Dependencies[name] = "ok"
	}
	if c.sessions != nil {
		res.ActiveSessions = c.sessions()
	}

	status := fiber.StatusOK
	if res.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Health", res))
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
