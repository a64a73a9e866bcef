package bootstrap

import (
	"context"
	"log"

	"deep-research-be/internal/config"
	"deep-research-be/internal/controller"
	"deep-research-be/internal/handler"
	"deep-research-be/internal/pkg/logger"
	"deep-research-be/internal/pkg/mailer"
	"deep-research-be/internal/repository/implementation"
	"deep-research-be/internal/repository/memory"
	"deep-research-be/internal/repository/unitofwork"
	"deep-research-be/internal/service"
	"deep-research-be/internal/websocket"
	"deep-research-be/pkg/embedding"
	"deep-research-be/pkg/embedding/jina"
	"deep-research-be/pkg/llm/factory"
	"deep-research-be/pkg/research"
	"deep-research-be/pkg/research/progress"
	"deep-research-be/pkg/websearch"

	pktNats "deep-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	OAuthController    controller.IOAuthController
	ChatController     controller.IChatController
	ResearchController controller.IResearchController
	DocumentController controller.IDocumentController
	GraphController    controller.IGraphController

	// Background Services (Exposed for main.go to run)
	IngestService service.IIngestService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	// Every embed call, research or ingest, goes through the LRU cache.
	cachedEmbedder := embedding.NewCachedProvider(embeddingProvider, cfg.Research.EmbedCacheSize)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	searchProvider := websearch.NewTavily(cfg.Keys.Tavily, "")

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Research Pipeline
	planner := research.NewPlanner(llmProvider)
	webWorker := research.NewWebWorker(searchProvider, cfg.Research.WebMaxResults, false)
	reasoner := research.NewReasoner(llmProvider)
	synthesizer := research.NewSynthesizer(llmProvider)
	progressBroker := progress.NewBroker()
	runRepo := memory.NewRunRepository()

	// 5. Services
	ingestService := service.NewIngestService(
		pubSub,
		cfg.Keys.EmbedTopicName,
		uowFactory,
		cachedEmbedder,
	)

	authService := service.NewAuthService(uowFactory)
	oauthService := service.NewOAuthService(cfg, uowFactory)

	researchService := service.NewResearchService(
		cfg,
		uowFactory,
		runRepo,
		progressBroker,
		wsHub,
		natsPub,
		emailService,
		sysLogger,
		cachedEmbedder,
		planner,
		webWorker,
		reasoner,
		synthesizer,
	)
	chatService := service.NewChatService(uowFactory, llmProvider, researchService)
	documentService := service.NewDocumentService(uowFactory)
	graphService := service.NewGraphService(cfg, uowFactory, pubSub, cachedEmbedder, sysLogger)

	// 6. Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		AuthController:      controller.NewAuthController(authService),
		OAuthController:     controller.NewOAuthController(oauthService),
		ChatController:      controller.NewChatController(chatService),
		ResearchController:  controller.NewResearchController(researchService),
		DocumentController:  controller.NewDocumentController(documentService),
		GraphController:     controller.NewGraphController(graphService),

		IngestService: ingestService,
	}
}
