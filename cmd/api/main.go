package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"onchain-teller-backend/internal/chain"
	"onchain-teller-backend/internal/config"
	"onchain-teller-backend/internal/handlers"
	"onchain-teller-backend/internal/middleware"
	"onchain-teller-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)

	// A missing provider is a reportable idle state, not a startup failure.
	provider, found := chain.Detect(context.Background(), cfg.ChainRPCURL)
	var sessions *services.SessionManager
	if found {
		defer provider.Close()
		sessions = services.NewSessionManager(provider)
	} else {
		log.Printf("No wallet provider reachable at %s", cfg.ChainRPCURL)
		sessions = services.NewSessionManager(nil)
	}

	atmABI, err := chain.LoadArtifact(cfg.ATMArtifactPath)
	if err != nil {
		log.Fatalf("Failed to load ATM artifact: %v", err)
	}

	gameABI := atmABI
	if cfg.GameContractAddress != "" {
		gameABI, err = chain.LoadArtifact(cfg.GameArtifactPath)
		if err != nil {
			log.Fatalf("Failed to load game artifact: %v", err)
		}
	}

	wsHandler := handlers.NewWebSocketHandler()
	state := services.NewDisplayStore(wsHandler)
	wsHandler.SetDisplayStore(state)

	reconciler := services.NewReconciler(state, redisService)
	orchestrator := services.NewOrchestrator(state, reconciler, redisService)

	bind := func(account string) (services.ContractSession, services.ContractSession, error) {
		atm, err := chain.Bind(provider, account, cfg.ATMContractAddress, atmABI, chain.ATMProfile)
		if err != nil {
			return nil, nil, err
		}
		if cfg.GameContractAddress == "" {
			return atm, nil, nil
		}
		game, err := chain.Bind(provider, account, cfg.GameContractAddress, gameABI, chain.GameProfile)
		if err != nil {
			return nil, nil, err
		}
		return atm, game, nil
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			orchestrator.CleanupStaleOperations(10 * time.Minute)
		}
	}()

	sessionHandler := handlers.NewSessionHandler(sessions, orchestrator, redisService, jwtService, state, bind)
	bankHandler := handlers.NewBankHandler(orchestrator)
	gameHandler := handlers.NewGameHandler(orchestrator, redisService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/connect", sessionHandler.Connect)
	router.GET("/auth/accounts", sessionHandler.GetAccounts)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/state", sessionHandler.GetState)
		protected.GET("/operations", sessionHandler.GetOperations)
		protected.POST("/logout", sessionHandler.Logout)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		bank := protected.Group("/bank")
		{
			bank.POST("/deposit", bankHandler.Deposit)
			bank.POST("/withdraw", bankHandler.Withdraw)
			bank.POST("/transfer", bankHandler.Transfer)
			bank.GET("/balance", bankHandler.GetBalance)
		}

		game := protected.Group("/game")
		{
			game.POST("/bet", gameHandler.PlaceBet)
			game.POST("/difficulty", gameHandler.SetDifficulty)
			game.POST("/reveal", gameHandler.RevealNumber)
			game.GET("/difficulty", gameHandler.GetDifficulty)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
