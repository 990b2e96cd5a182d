package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

// BindFunc builds the session-scoped contract handles for a freshly
// connected account.
type BindFunc func(account string) (atm, game services.ContractSession, err error)

type SessionHandler struct {
	sessions     *services.SessionManager
	orchestrator *services.Orchestrator
	redisService *services.RedisService
	jwtService   *services.JWTService
	state        *services.DisplayStore
	bind         BindFunc
}

func NewSessionHandler(sessions *services.SessionManager, orchestrator *services.Orchestrator, redisService *services.RedisService, jwtService *services.JWTService, state *services.DisplayStore, bind BindFunc) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		orchestrator: orchestrator,
		redisService: redisService,
		jwtService:   jwtService,
		state:        state,
		bind:         bind,
	}
}

// Connect requests wallet account access, binds the contracts to the active
// account and hands back an API token plus the first display snapshot.
func (h *SessionHandler) Connect(c *gin.Context) {
	account, err := h.sessions.Connect(c.Request.Context())
	if err != nil {
		kind := services.Classify(err)
		status := http.StatusBadGateway
		if kind == models.ErrKindProviderUnavailable {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"success":    false,
			"error_kind": kind,
			"error":      services.DisplayMessage(kind, err),
		})
		return
	}

	if account == "" {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "No account found",
		})
		return
	}

	atm, game, err := h.bind(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to bind contracts",
			"details": err.Error(),
		})
		return
	}
	h.orchestrator.Attach(atm, game)

	session := &models.WalletSession{
		SessionID:    models.GenerateSessionID(),
		Account:      account,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
	if err := h.redisService.StoreWalletSession(session, services.TTLWalletSession); err != nil {
		log.Printf("Failed to store wallet session: %v", err)
	}

	token, err := h.jwtService.IssueToken(account, session.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	tier := h.orchestrator.ActiveTier()
	h.state.Publish(func(ds *models.DisplayState) {
		ds.Account = account
		ds.Tier = tier
		ds.TierLimits = tier.Limits()
		ds.Error = nil
	})

	// Balance is unknown right after connect; reconcile eagerly.
	if _, err := h.orchestrator.RefreshBankBalance(c.Request.Context()); err != nil {
		log.Printf("Failed to refresh balance after connect: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"account": account,
		"state":   h.state.Snapshot(),
	})
}

// GetAccounts lists provider accounts without prompting the user.
func (h *SessionHandler) GetAccounts(c *gin.Context) {
	accounts, err := h.sessions.Accounts(c.Request.Context())
	if err != nil {
		kind := services.Classify(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":    false,
			"error_kind": kind,
			"error":      services.DisplayMessage(kind, err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"accounts": accounts,
		"active":   h.sessions.Active(),
	})
}

func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"state":   h.state.Snapshot(),
	})
}

func (h *SessionHandler) GetOperations(c *gin.Context) {
	account := c.GetString("account")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	records, err := h.redisService.GetOperations(account, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch operations",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"operations": records,
		"count":      len(records),
	})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	account := c.GetString("account")
	sessionID := c.GetString("session_id")

	if err := h.redisService.DeleteWalletSession(account, sessionID); err != nil {
		log.Printf("Failed to delete wallet session: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
