package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"resolution-rag-be/internal/config"
	"resolution-rag-be/internal/controller"
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/handler"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/internal/pkg/serverutils"
	"resolution-rag-be/internal/repository/implementation"
	"resolution-rag-be/internal/repository/memory"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/internal/service"
	"resolution-rag-be/internal/websocket"
	"resolution-rag-be/pkg/embedding"
	"resolution-rag-be/pkg/embedding/jina"
	"resolution-rag-be/pkg/events"
	"resolution-rag-be/pkg/llm/factory"
	pktNats "resolution-rag-be/pkg/nats"
	"resolution-rag-be/pkg/rag/prompt"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/rag/session"
	"resolution-rag-be/pkg/resolution"
	"resolution-rag-be/pkg/storage"
	"resolution-rag-be/pkg/sysusage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController          controller.IDocumentController
	RequestedDocumentController controller.IRequestedDocumentController
	QueryController             controller.IQueryController
	HealthController            controller.IHealthController
	StreamHandler               *handler.StreamHandler

	// Guard protects document mutations.
	Guard fiber.Handler

	// Background Services (run by Run)
	ConsumerService service.IConsumerService
	EventListener   *service.EventListenerService
	WebSocketHub    *websocket.Hub
	Sessions        *session.Manager

	Logger logger.ILogger

	cfg     *config.Config
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{cfg: cfg, Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	// NATS
	var eventPublisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	rdb := NewRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// Blob storage
	blobs := storage.NewLocalStore(cfg.App.UploadDir, cfg.App.BaseURL, cfg.App.UploadMountPath)

	// 4. AI collaborators
	embeddingProvider := NewEmbeddingProvider(cfg, rdb)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		firstNonEmpty(cfg.Ai.LLMBaseURL, cfg.Ai.OllamaBaseURL),
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Retrieval
	vectorStore := search.NewCachedStore(implementation.NewEmbeddingRepository(db), cfg.Rag.CollectionCacheTTL)
	sampler := sysusage.NewSampler(cfg.Rag.UsageSampleWindow)

	sessions := session.NewManager(memory.NewSessionRepository(), session.Config{
		MaxSessions:     cfg.Session.MaxSessions,
		MaxInteractions: cfg.Session.MaxInteractions,
		InactivityLimit: cfg.Session.InactivityLimit,
	})
	c.Sessions = sessions

	requestedDocumentService := service.NewRequestedDocumentService(uowFactory, sysLogger)
	retriever := search.NewRetriever(vectorStore, embeddingProvider, requestedDocumentService, search.Config{
		VectorLimit: cfg.Rag.VectorLimit,
	})

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Events.IndexDocumentTopic)
	documentService := service.NewDocumentService(
		uowFactory,
		blobs,
		publisherService,
		vectorStore,
		vectorStore,
		sampler,
		sysLogger,
	)
	indexingService := service.NewIndexingService(
		uowFactory,
		embeddingProvider,
		localPageReader(blobs),
		eventPublisher,
		service.IndexingConfig{ChunkSize: cfg.Rag.ChunkSize, ChunkOverlap: cfg.Rag.ChunkOverlap},
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Events.IndexDocumentTopic, indexingService, sysLogger)
	if natsSub != nil {
		c.EventListener = service.NewEventListenerService(natsSub, vectorStore, sysLogger)
	}

	queryService := service.NewQueryService(uowFactory, retriever, sessions, eventPublisher, sysLogger)
	generationService := service.NewGenerationService(
		llmProvider,
		prompt.NewBuilder(prompt.Assistant{Name: cfg.Ai.AssistantName, Area: cfg.Ai.AssistantArea}),
		sessions,
		sampler,
		service.GenerationConfig{
			Temperature: cfg.Ai.Temperature,
			TopK:        cfg.Ai.TopK,
			NumThread:   cfg.Ai.NumThread,
		},
		sysLogger,
	)

	// 7. WebSocket stream
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, generationService, sessions, streamLogger)

	// 8. Controllers
	c.DocumentController = controller.NewDocumentController(documentService)
	c.RequestedDocumentController = controller.NewRequestedDocumentController(requestedDocumentService)
	c.QueryController = controller.NewQueryController(queryService)
	c.HealthController = controller.NewHealthController(healthChecks(db, rdb), sessions.Len)
	c.StreamHandler = handler.NewStreamHandler(c.WebSocketHub, streamLogger)
	c.Guard = serverutils.NewJwtMiddleware(cfg.App.JWTSecret)

	return c
}

// Run starts the background workers and blocks until ctx is done or one of
// them fails.
func (c *Container) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Println("Background: Starting Consumer Service...")
		return c.ConsumerService.Consume(gctx)
	})
	g.Go(func() error {
		c.WebSocketHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		c.Sessions.Run(gctx, c.cfg.Session.SweepInterval)
		return nil
	})
	if c.EventListener != nil {
		if err := c.EventListener.Start(gctx); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Event listener disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the broker and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}

// NewRedisClient connects to url; an empty url disables Redis.
func NewRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

// NewEmbeddingProvider selects the configured backend and wraps it with the
// retry policy and, when Redis is configured, the query cache.
func NewEmbeddingProvider(cfg *config.Config, rdb *redis.Client) embedding.EmbeddingProvider {
	var provider embedding.EmbeddingProvider
	var model string
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		gemini := embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		provider, model = gemini, gemini.Model
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", model)
	case "jina":
		provider, model = jina.NewJinaProvider(cfg.Ai.JinaAPIKey, "", ""), jina.DefaultModel
		log.Printf("[INFO] Using Embedding Provider: JINA AI (%s)", model)
	default:
		ollama := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		provider, model = ollama, ollama.Model
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", model)
	}

	policy := embedding.DefaultRetryPolicy()
	if cfg.Rag.EmbedRetries > 0 {
		policy.MaxAttempts = uint(cfg.Rag.EmbedRetries)
		policy.Delay = cfg.Rag.EmbedRetryDelay
	}
	provider = embedding.WithRetry(provider, policy)
	if rdb != nil {
		provider = embedding.NewCachedProvider(provider, rdb, cfg.Ai.EmbeddingProvider, model, cfg.Rag.EmbeddingCacheTTL)
	}
	return provider
}

// localPageReader resolves a document's object key on local storage and
// reads its pages.
func localPageReader(blobs *storage.LocalStore) service.PageReader {
	return func(ctx context.Context, doc *entity.Document) ([]string, error) {
		path, err := blobs.LocalPath(doc.PhysicalPath)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", doc.PhysicalPath, err)
		}
		return resolution.ReadFile(path)
	}
}

func healthChecks(db *gorm.DB, rdb *redis.Client) map[string]controller.Pinger {
	checks := map[string]controller.Pinger{
		"database": controller.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if rdb != nil {
		checks["redis"] = controller.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return checks
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
