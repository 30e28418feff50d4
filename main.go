package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/niveshipo/backend/config"
	"github.com/niveshipo/backend/database"
	"github.com/niveshipo/backend/handlers"
	"github.com/niveshipo/backend/jobs"
	"github.com/niveshipo/backend/services"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Open the embedded store for the community board
	if err := database.Connect(cfg.DataDir); err != nil {
		logrus.Fatalf("Failed to open data store: %v", err)
	}
	defer database.Close()

	// Initialize services
	geminiService, err := services.NewGeminiService(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize Gemini service: %v", err)
	}

	listingService := services.NewListingService(geminiService, cfg.FlashModel)
	riskService := services.NewRiskService(geminiService, cfg.ProModel)
	chatService := services.NewChatService(geminiService, cfg.FlashModel)

	communityService, err := services.NewCommunityService(database.DB)
	if err != nil {
		logrus.Fatalf("Failed to initialize community service: %v", err)
	}

	// Periodic market sync with explicit lifecycle
	syncJob := jobs.NewMarketSyncJob(listingService, cfg.GetSyncInterval())
	syncJob.Start()

	// Initialize handlers
	listingHandler := handlers.NewListingHandler(listingService, syncJob)
	riskHandler := handlers.NewRiskHandler(riskService, listingService)
	chatHandler := handlers.NewChatHandler(chatService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	marketHandler := handlers.NewMarketHandler(listingService)
	metricsHandler := handlers.NewMetricsHandler(
		geminiService.Metrics,
		listingService.Metrics,
		riskService.Metrics,
		chatService.Metrics,
	)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// Routes
	api := app.Group("/api/v1")

	// Listing Routes
	api.Get("/listings", listingHandler.GetListings)
	api.Post("/listings/refresh", listingHandler.RefreshListings)
	api.Get("/listings/:symbol", listingHandler.GetListingBySymbol)
	api.Post("/listings/:symbol/risk", riskHandler.AnalyzeListing)
	api.Get("/listings/:symbol/risk", riskHandler.GetLatestAnalysis)

	// Market Routes
	api.Get("/market/indices", marketHandler.GetMarketIndices)
	api.Get("/market/news", marketHandler.GetMarketNews)

	// Chat Routes
	api.Post("/chat", chatHandler.Chat)
	api.Post("/chat/transcribe", chatHandler.Transcribe)

	// Community Routes
	api.Get("/community", communityHandler.GetMessages)
	api.Post("/community", communityHandler.PostMessage)

	// Metrics Route
	api.Get("/metrics", metricsHandler.GetMetrics)

	// Start server, stop the sync job on shutdown
	go func() {
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, syscall.SIGINT, syscall.SIGTERM)
		<-quitCh

		logrus.Info("Shutting down...")
		syncJob.Stop()
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("Server shutdown error: %v", err)
		}
	}()

	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
