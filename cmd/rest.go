package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/turinglabs/kbchat/chatbot/application"
	"github.com/turinglabs/kbchat/chatbot/domain"
	"github.com/turinglabs/kbchat/chatbot/providers"
	"github.com/turinglabs/kbchat/chatbot/repository"
	"github.com/turinglabs/kbchat/core/config"
	"github.com/turinglabs/kbchat/core/database"
	"github.com/turinglabs/kbchat/infrastructure/valkey"
	"github.com/turinglabs/kbchat/infrastructure/vectorstore"
	"github.com/turinglabs/kbchat/ui/rest"
	"github.com/turinglabs/kbchat/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the chat API over http",
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("port", "", "Port to listen on (overrides APP_PORT)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg := config.Global
	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.App.Port = portFlag
	}

	ctx := context.Background()

	db, err := database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[REST] Failed to connect database: %v", err)
	}

	contextCacheRepo := repository.NewContextCacheGormRepository(db)
	promptRepo := repository.NewPromptGormRepository(db)
	documentRepo := repository.NewDocumentGormRepository(db)
	for _, migrate := range []func(context.Context) error{
		contextCacheRepo.Init, promptRepo.Init, documentRepo.Init,
	} {
		if err := migrate(ctx); err != nil {
			logrus.Fatalf("[REST] Failed to migrate schema: %v", err)
		}
	}

	var vkClient *valkey.Client
	var memoryRepo domain.IConversationMemoryRepository
	var responseCacheRepo domain.IResponseCacheRepository
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Fatalf("[REST] Failed to connect valkey: %v", err)
		}
		memoryRepo = repository.NewValkeyConversationMemory(vkClient)
		responseCacheRepo = repository.NewValkeyResponseCache(vkClient)
		logrus.Info("[REST] Using valkey-backed conversation memory and response cache")
	} else {
		memoryRepo = repository.NewMemoryConversationStore()
		responseCacheRepo = repository.NewMemoryResponseCache()
		logrus.Info("[REST] Using in-memory conversation memory and response cache")
	}

	var generator domain.IGenerationProvider
	var embedder domain.IEmbeddingProvider
	var summarizer domain.ISummarizer
	var remoteCache domain.IRemoteContextCache
	switch cfg.AI.Provider {
	case "openai":
		provider, err := providers.NewOpenAIProvider(cfg.AI.OpenAIAPIKey, cfg.AI.ChatModel, cfg.AI.EmbedModel, cfg.AI.RequestTimeout)
		if err != nil {
			logrus.Fatalf("[REST] Failed to create openai provider: %v", err)
		}
		generator, embedder, summarizer, remoteCache = provider, provider, provider, provider
	default:
		provider, err := providers.NewGeminiProvider(ctx, cfg.AI.GeminiAPIKey, cfg.AI.ChatModel, cfg.AI.EmbedModel, cfg.AI.RequestTimeout)
		if err != nil {
			logrus.Fatalf("[REST] Failed to create gemini provider: %v", err)
		}
		generator, embedder, summarizer, remoteCache = provider, provider, provider, provider
	}

	vectorStore, err := vectorstore.NewChromemStore("knowledge_base")
	if err != nil {
		logrus.Fatalf("[REST] Failed to create vector store: %v", err)
	}

	memoryService := application.NewConversationMemoryService(memoryRepo, cfg.Cache.ConversationTTL, cfg.Cache.SummarizeThreshold)
	responseCache := application.NewResponseCache(responseCacheRepo, cfg.Cache.ResponseTTL)
	contextCache := application.NewContextCacheManager(contextCacheRepo, remoteCache, cfg.AI.ContextCacheTTL)
	ingestion := application.NewIngestionService(documentRepo, embedder, vectorStore, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	promptService := application.NewPromptService(promptRepo, contextCache)

	orchestrator := application.NewChatOrchestrator(
		memoryService,
		responseCache,
		contextCache,
		embedder,
		vectorStore,
		promptRepo,
		generator,
		summarizer,
		application.OrchestratorConfig{
			DefaultSystemInstruction: cfg.AI.SystemInstruction,
			MatchThreshold:           cfg.Retrieve.MatchThreshold,
			MatchCount:               cfg.Retrieve.MatchCount,
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      "kbchat " + cfg.App.Version,
		Network:      "tcp",
		ServerHeader: "Hidden",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	rest.InitRestChat(apiGroup, orchestrator)
	rest.InitRestDocument(apiGroup, documentRepo, ingestion)
	rest.InitRestPrompt(apiGroup, promptRepo, promptService)
	rest.InitRestHealth(apiGroup, db, vkClient)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Termination signal received, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during shutdown: %v", err)
		}
		if vkClient != nil {
			vkClient.Close()
		}
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalf("[REST] Server stopped: %v", err)
	}
}
