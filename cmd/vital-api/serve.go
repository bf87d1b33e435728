package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vitalhq/vital/backend/internal/config"
	"github.com/vitalhq/vital/backend/internal/handlers"
	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/middleware"
	"github.com/vitalhq/vital/backend/internal/repository"
	"github.com/vitalhq/vital/backend/internal/service"
	"github.com/vitalhq/vital/backend/pkg/anthropic"
	"github.com/vitalhq/vital/backend/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	logger.SetDefault(logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Backend: cfg.Log.Backend,
	}))

	log := logger.Default()
	log.Info("starting vital API server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL),
	)

	// Initialize external clients
	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	anthropicClient := anthropic.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.Model)

	// Initialize repositories
	healthRepo := repository.NewHealthDailyRepository(supabaseClient)
	baselineRepo := repository.NewBaselineRepository(supabaseClient)
	patternRepo := repository.NewPatternRepository(supabaseClient)
	insightRepo := repository.NewProactiveInsightRepository(supabaseClient)

	// Initialize services
	baselineService := service.NewBaselineService(healthRepo, baselineRepo)
	patternService := service.NewPatternService(healthRepo, patternRepo)
	ruleService := service.NewInsightRuleService()
	checkInService := service.NewCheckInService()
	streakService := service.NewStreakService(healthRepo)
	contextService := service.NewInsightContextService(healthRepo, streakService)
	messageGenerator := service.NewAnthropicMessageGenerator(anthropicClient)
	proactiveService := service.NewProactiveInsightService(healthRepo, insightRepo, messageGenerator)
	proofService := service.NewProofService(healthRepo)

	// Initialize handlers
	insightsHandler := handlers.NewInsightsHandler(ruleService, contextService, proactiveService)
	checkInHandler := handlers.NewCheckInHandler(checkInService, contextService)
	baselinesHandler := handlers.NewBaselinesHandler(baselineService)
	patternsHandler := handlers.NewPatternsHandler(patternService)
	proofsHandler := handlers.NewProofsHandler(proofService)
	webhooksHandler := handlers.NewWebhooksHandler(proactiveService)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// Middleware
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Webhook routes authenticate with the shared service key, not a
		// user token
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.ServiceKey(cfg.Webhook.ServiceKey))
		{
			webhooks.POST("/health-data", webhooksHandler.IngestHealthData)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.Auth(supabaseClient))
		{
			// Insight routes
			protected.GET("/insights/daily", insightsHandler.GetDailyInsight)
			protected.GET("/insights/daily/all", insightsHandler.GetDailyInsights)
			protected.GET("/insights/proactive", insightsHandler.GetProactiveInsights)
			protected.POST("/insights/proactive/:id/read", insightsHandler.MarkProactiveInsightRead)

			// Check-in routes
			protected.GET("/checkin/context", checkInHandler.GetCheckInContext)
			protected.POST("/checkin/acknowledge", checkInHandler.AcknowledgeCheckIn)

			// Derived analytics routes
			protected.GET("/baselines", baselinesHandler.GetBaselines)
			protected.GET("/patterns", patternsHandler.GetPatterns)

			// Proof routes
			protected.POST("/proofs/verify", proofsHandler.VerifyProof)
		}
	}

	log.Info("server listening", logger.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
