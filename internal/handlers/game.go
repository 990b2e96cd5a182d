package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

type GameHandler struct {
	orchestrator *services.Orchestrator
	redisService *services.RedisService
}

func NewGameHandler(orchestrator *services.Orchestrator, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		orchestrator: orchestrator,
		redisService: redisService,
	}
}

func (h *GameHandler) PlaceBet(c *gin.Context) {
	account := c.GetString("account")

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// Rate Limit: 30 bets per minute
	allowed, err := h.redisService.CheckRateLimit(account, "bet", services.DefaultRateLimitBets, 1*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many bets. Please wait."})
		return
	}

	outcome := h.orchestrator.Execute(c.Request.Context(), models.OpPlaceBet, services.OperationParams{
		Stake: req.Stake,
		Guess: req.Guess,
	})
	respondOutcome(c, outcome)
}

func (h *GameHandler) SetDifficulty(c *gin.Context) {
	var req models.DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	outcome := h.orchestrator.Execute(c.Request.Context(), models.OpSetDifficulty, services.OperationParams{
		Tier: req.Tier,
	})
	respondOutcome(c, outcome)
}

func (h *GameHandler) RevealNumber(c *gin.Context) {
	outcome := h.orchestrator.Execute(c.Request.Context(), models.OpRevealNumber, services.OperationParams{})
	respondOutcome(c, outcome)
}

func (h *GameHandler) GetDifficulty(c *gin.Context) {
	tier := h.orchestrator.ActiveTier()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tier":    tier,
		"limits":  tier.Limits(),
	})
}
