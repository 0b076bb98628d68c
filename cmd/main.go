package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pulse-market/internal/auth"
	"pulse-market/internal/chain"
	"pulse-market/internal/config"
	"pulse-market/internal/database"
	"pulse-market/internal/handlers"
	"pulse-market/internal/jobs"
	"pulse-market/internal/oracle"
	"pulse-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize chain and oracle clients
	chainClient := chain.NewClient(cfg.Chain.NodeURL, cfg.Chain.PulseAddress)
	oracleClient := oracle.NewClient(cfg.Pyth.Endpoint, cfg.Pyth.CacheTTL)
	gasStation := chain.NewGasStation(cfg.Sponsor.Endpoint, cfg.Sponsor.APIKey)
	resolverSender := chain.NewRemoteSender(cfg.Chain.SignerURL, cfg.Chain.SignerAddress, cfg.Chain.SignerTimeout)

	// Initialize services
	marketService := services.NewMarketService(chainClient, cfg.App.MinBet, cfg.App.MaxBet)
	positionService := services.NewPositionService(chainClient, marketService)
	claimService := services.NewClaimService(database.DB, chainClient, positionService)
	resolutionService := services.NewResolutionService(database.DB, chainClient, marketService, oracleClient, resolverSender)
	leaderboardService := services.NewLeaderboardService(database.DB, positionService)
	bonusService := services.NewBonusService(chainClient)
	referralService := services.NewReferralService(chainClient)
	authService := services.NewAuthService(database.DB)

	// Initialize handlers
	marketHandler := handlers.NewMarketHandler(marketService, resolutionService)
	positionHandler := handlers.NewPositionHandler(positionService, claimService, leaderboardService,
		func(address string) chain.TxnSender {
			return chain.NewRemoteSender(cfg.Chain.SignerURL, address, cfg.Chain.SignerTimeout)
		})
	priceHandler := handlers.NewPriceHandler(oracleClient)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	bonusHandler := handlers.NewBonusHandler(bonusService)
	referralHandler := handlers.NewReferralHandler(referralService)
	sponsorHandler := handlers.NewSponsorHandler(gasStation)
	authHandler := handlers.NewAuthHandler(authService)

	// Start resolution worker unless a standalone resolver runs elsewhere
	var worker *jobs.ResolutionWorker
	if cfg.Worker.Enabled {
		worker = jobs.NewResolutionWorker(resolutionService, cfg.Worker.Interval)
		go worker.Start()
	}

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:8081", // Expo dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8081",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		nodeOK := chainClient.HealthCheck(c.Request.Context()) == nil
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"node":   nodeOK,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/challenge", authHandler.Challenge)
		authRoutes.POST("/verify", authHandler.Verify)
	}

	// Public read routes
	api := router.Group("/api")
	{
		api.GET("/markets", marketHandler.GetMarkets)
		api.GET("/markets/pending-resolution", marketHandler.GetPendingResolution)
		api.GET("/markets/:id", marketHandler.GetMarketByID)
		api.POST("/markets/:id/payout", marketHandler.PreviewPayout)

		api.GET("/positions/:address", positionHandler.GetPositions)
		api.GET("/positions/:address/active", positionHandler.GetActivePositions)
		api.GET("/positions/:address/claimable", positionHandler.GetClaimablePositions)
		api.GET("/stats/:address", positionHandler.GetStats)

		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

		api.GET("/prices", priceHandler.GetPrices)
		api.GET("/prices/feeds", priceHandler.GetFeeds)
		api.GET("/prices/:symbol", priceHandler.GetPrice)
		api.POST("/prices/update-data", priceHandler.GetUpdateData)

		api.GET("/bonus-stats", bonusHandler.GetStats)
		api.GET("/bonus/welcome-amount", bonusHandler.GetWelcomeAmount)
		api.GET("/bonus/:address", bonusHandler.GetBonus)

		api.GET("/referrals/:address", referralHandler.GetStats)
		api.GET("/referrals/:address/has-referrer", referralHandler.HasReferrer)
		api.GET("/referrals/:address/referrer", referralHandler.GetReferrer)
	}

	// Routes that submit transactions (protected)
	protected := router.Group("/api")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/positions/:address/claim-all", positionHandler.ClaimAll)
		protected.POST("/markets/:id/resolve-oracle", marketHandler.ResolveWithOracle)
		protected.POST("/sponsor", sponsorHandler.Sponsor)
		protected.GET("/sponsor/status", sponsorHandler.Status)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if worker != nil {
		worker.Stop()
	}

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
