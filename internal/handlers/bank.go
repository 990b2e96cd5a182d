package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

type BankHandler struct {
	orchestrator *services.Orchestrator
}

func NewBankHandler(orchestrator *services.Orchestrator) *BankHandler {
	return &BankHandler{orchestrator: orchestrator}
}

func (h *BankHandler) Deposit(c *gin.Context) {
	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	outcome := h.orchestrator.Execute(c.Request.Context(), models.OpDeposit, services.OperationParams{
		Amount: req.Amount,
	})
	respondOutcome(c, outcome)
}

func (h *BankHandler) Withdraw(c *gin.Context) {
	var req models.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	outcome := h.orchestrator.Execute(c.Request.Context(), models.OpWithdraw, services.OperationParams{
		Amount: req.Amount,
	})
	respondOutcome(c, outcome)
}

func (h *BankHandler) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	outcome := h.orchestrator.Execute(c.Request.Context(), models.OpTransfer, services.OperationParams{
		Amount:    req.Amount,
		Recipient: req.Recipient,
	})
	respondOutcome(c, outcome)
}

func (h *BankHandler) GetBalance(c *gin.Context) {
	balance, err := h.orchestrator.RefreshBankBalance(c.Request.Context())
	if err != nil {
		kind := services.Classify(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      services.DisplayMessage(kind, err),
			"error_kind": kind,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": balance,
	})
}

func respondOutcome(c *gin.Context, outcome models.Outcome) {
	switch outcome.Status {
	case models.StatusValidationFailed:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"outcome": outcome,
		})
	case models.StatusFailed:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"outcome": outcome,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"outcome": outcome,
		})
	}
}
