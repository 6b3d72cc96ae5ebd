package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"core/internal/config"
	"core/internal/handler"
	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Property Chat Engine")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	db, err := repository.NewDB(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✅ Connected to PostgreSQL database")

	propertyRepo := repository.NewPropertyRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	// The vector backend is optional; without it retrieval serves purely from
	// PostgreSQL.
	var vectorIndex service.VectorIndex
	if cfg.Qdrant.Enabled {
		qdrantRepo, err := repository.NewQdrantRepository(&cfg.Qdrant)
		if err != nil {
			log.Printf("⚠️  Qdrant unavailable, semantic tier disabled: %v", err)
		} else {
			vectorIndex = qdrantRepo
			defer qdrantRepo.Close()
			log.Printf("✅ Qdrant connected (%s:%d, collection %q)", cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection)
		}
	} else {
		log.Println("⚠️  Qdrant is not configured - retrieval will use PostgreSQL only")
	}

	var llm *service.OpenAIClient
	var embedder service.EmbeddingClient
	if cfg.OpenAI.Enabled {
		llm = service.NewOpenAIClient(&cfg.OpenAI)
		embedder = llm
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
	} else {
		log.Println("⚠️  OpenAI is disabled - classification falls back to heuristics")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	var llmClient service.CompletionClient
	if llm != nil {
		llmClient = llm
	}

	classifier := service.NewIntentClassifier(llmClient, service.WithTimeout(cfg.Chat.ClassifyTimeout))
	searchService := service.NewHybridSearchService(vectorIndex, embedder, propertyRepo, service.WithTimeout(cfg.Chat.SearchTimeout))
	memoryService := service.NewMemoryService(sessionRepo, llmClient, cfg.Chat.SessionTTL, cfg.Chat.SummaryWindow, service.WithTimeout(cfg.Chat.SummaryTimeout))
	defer memoryService.Close()
	composer := service.NewComposer(&cfg.Chat)

	chatService := service.NewChatService(service.ChatServiceOptions{
		Classifier:      classifier,
		Search:          searchService,
		Memory:          memoryService,
		Composer:        composer,
		LLM:             llmClient,
		Leads:           leadRepo,
		Properties:      propertyRepo,
		AnswerTimeout:   service.WithTimeout(cfg.Chat.AnswerTimeout),
		DefaultPageSize: cfg.Chat.DefaultPageSize,
		MaxPageSize:     cfg.Chat.MaxPageSize,
	})

	log.Println("✅ Services initialized")

	chatHandler := handler.NewChatHandler(chatService)
	mortgageHandler := handler.NewMortgageHandler()
	embeddingHandler := handler.NewEmbeddingHandler(propertyRepo, cfg.OpenAI.EmbeddingDimensions)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "property-chat-engine",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Send)
		apiV1.POST("/mortgage", mortgageHandler.Calculate)
		apiV1.PUT("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
