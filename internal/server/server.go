package server

import (
	"context"
	"log"

	"resolution-rag-be/internal/bootstrap"
	"resolution-rag-be/internal/config"
	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/pkg/serverutils"
	"resolution-rag-be/internal/service"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/rag/session"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

// ErrorMappings binds the domain sentinels to HTTP statuses and the
// messages shown to users.
func ErrorMappings() []serverutils.ErrorMapping {
	return []serverutils.ErrorMapping{
		{Err: session.ErrSessionNotFound, Status: fiber.StatusNotFound, Message: constant.MsgSessionNotFound},
		{Err: session.ErrInteractionNotFound, Status: fiber.StatusNotFound, Message: constant.MsgInteractionMissing},
		{Err: service.ErrDocumentNotFound, Status: fiber.StatusNotFound, Message: constant.MsgDocumentNotFound},
		{Err: service.ErrDocumentExists, Status: fiber.StatusConflict, Message: constant.MsgDocumentExists},
		{Err: search.ErrNoCollections, Status: fiber.StatusNotFound, Message: constant.MsgNoCollections},
	}
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.App.MaxUploadSizeMB * 1024 * 1024,
		ErrorHandler: serverutils.ErrorHandler,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(ErrorMappings()...))

	// Uploaded resolutions are served as-is
	app.Static(cfg.App.UploadMountPath, cfg.App.UploadDir)

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.HealthController.RegisterRoutes(api)
	c.DocumentController.RegisterRoutes(api, c.Guard)
	c.RequestedDocumentController.RegisterRoutes(api)
	c.QueryController.RegisterRoutes(api)
	c.StreamHandler.RegisterRoutes(api)
}
