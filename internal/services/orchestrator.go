package services

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"onchain-teller-backend/internal/models"
)

// OperationParams carries the kind-specific payload of one user action.
// Only the fields the kind reads are consulted.
type OperationParams struct {
	Amount    string
	Recipient string
	Stake     string
	Guess     int64
	Tier      models.DifficultyTier
}

// Orchestrator executes state-changing contract calls: validate locally,
// submit, wait for confirmation, extract the emitted result and trigger
// reconciliation. One orchestrator serves both bound applications.
type Orchestrator struct {
	mu   sync.RWMutex
	atm  ContractSession
	game ContractSession
	tier models.DifficultyTier

	state      *DisplayStore
	reconciler *Reconciler
	redis      *RedisService

	pendingMu sync.Mutex
	pending   map[string]time.Time
}

func NewOrchestrator(state *DisplayStore, reconciler *Reconciler, redis *RedisService) *Orchestrator {
	return &Orchestrator{
		tier:       models.TierEasy,
		state:      state,
		reconciler: reconciler,
		redis:      redis,
		pending:    make(map[string]time.Time),
	}
}

// Attach installs the contract handles of a freshly connected session,
// replacing any prior ones. Bindings are immutable, so an account change
// means new handles, never mutation.
func (o *Orchestrator) Attach(atm, game ContractSession) {
	o.mu.Lock()
	o.atm = atm
	o.game = game
	o.mu.Unlock()
}

// RefreshBankBalance reconciles the displayed balance from the banking
// contract. Used for the eager first read after connect and for explicit
// balance queries.
func (o *Orchestrator) RefreshBankBalance(ctx context.Context) (string, error) {
	o.mu.RLock()
	atm := o.atm
	o.mu.RUnlock()

	if atm == nil {
		return "", ErrProviderUnavailable
	}
	return o.reconciler.RefreshBalance(ctx, atm)
}

func (o *Orchestrator) ActiveTier() models.DifficultyTier {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.tier
}

type txPlan struct {
	contract ContractSession
	method   string
	value    *big.Int
	args     []interface{}
	event    string
}

// Execute runs one orchestrated call to its terminal outcome. Local
// validation failures short-circuit without touching the network; every
// network-path failure comes back classified.
func (o *Orchestrator) Execute(ctx context.Context, kind models.OperationKind, params OperationParams) models.Outcome {
	plan, reason := o.plan(kind, params)
	if reason != "" {
		return models.Outcome{
			OperationID: models.GenerateOperationID(),
			Kind:        kind,
			Status:      models.StatusValidationFailed,
			Message:     reason,
		}
	}
	if plan.contract == nil {
		return o.fail(nil, kind, ErrProviderUnavailable)
	}

	record := &models.OperationRecord{
		ID:          models.GenerateOperationID(),
		Account:     plan.contract.Account(),
		Kind:        kind,
		Amount:      firstNonEmpty(params.Amount, params.Stake),
		Recipient:   params.Recipient,
		Guess:       params.Guess,
		Tier:        params.Tier,
		Status:      models.StatusPending,
		SubmittedAt: time.Now(),
	}
	o.journal(record)
	o.trackPending(record.ID)

	txHash, err := plan.contract.Transact(ctx, plan.method, plan.value, plan.args...)
	if err != nil {
		return o.fail(record, kind, err)
	}
	record.TxHash = txHash.Hex()

	receipt, err := plan.contract.WaitMined(ctx, txHash)
	if err != nil {
		return o.fail(record, kind, err)
	}

	outcome := models.Outcome{
		OperationID: record.ID,
		Kind:        kind,
		Status:      models.StatusConfirmed,
		TxHash:      txHash.Hex(),
	}

	fields, found := plan.contract.DecodeEvent(receipt, plan.event)
	if !found {
		// The call may still have taken effect; degraded success, not failure.
		outcome.Status = models.StatusSubmittedNoEvent
		outcome.Message = "Transaction submitted, but no confirmation event was observed"
	}

	o.applyResult(ctx, kind, params, plan, fields, found, &outcome)

	record.Status = outcome.Status
	record.Message = outcome.Message
	record.CompletedAt = time.Now()
	o.journal(record)
	o.untrackPending(record.ID)

	return outcome
}

// plan resolves the kind into its contract call and runs local validation.
// A non-empty reason means validation failed and no network call is made.
func (o *Orchestrator) plan(kind models.OperationKind, params OperationParams) (txPlan, string) {
	o.mu.RLock()
	atm, game, tier := o.atm, o.game, o.tier
	o.mu.RUnlock()

	switch kind {
	case models.OpDeposit:
		wei, err := models.ParseEther(params.Amount)
		if err != nil {
			return txPlan{}, fmt.Sprintf("invalid amount %q: %v", params.Amount, err)
		}
		return txPlan{contract: atm, method: "deposit", value: wei, event: "Deposit"}, ""

	case models.OpWithdraw:
		wei, err := models.ParseEther(params.Amount)
		if err != nil {
			return txPlan{}, fmt.Sprintf("invalid amount %q: %v", params.Amount, err)
		}
		return txPlan{contract: atm, method: "withdraw", args: []interface{}{wei}, event: "Withdraw"}, ""

	case models.OpTransfer:
		wei, err := models.ParseEther(params.Amount)
		if err != nil {
			return txPlan{}, fmt.Sprintf("invalid amount %q: %v", params.Amount, err)
		}
		if !models.ValidAddress(params.Recipient) {
			return txPlan{}, fmt.Sprintf("invalid recipient address %q", params.Recipient)
		}
		return txPlan{
			contract: atm,
			method:   "transfer",
			args:     []interface{}{common.HexToAddress(params.Recipient), wei},
			event:    "Transfer",
		}, ""

	case models.OpPlaceBet:
		stake, err := models.ParseEther(params.Stake)
		if err != nil {
			return txPlan{}, fmt.Sprintf("invalid stake %q: %v", params.Stake, err)
		}
		limits := tier.Limits()
		if !limits.Contains(stake) {
			return txPlan{}, fmt.Sprintf("stake %s ETH is outside the %s tier bounds [%g, %g] ETH",
				params.Stake, tier, limits.MinBet, limits.MaxBet)
		}
		// The guess is deliberately not range-checked here; the contract
		// enforces the guess range.
		return txPlan{
			contract: game,
			method:   "placeBet",
			value:    stake,
			args:     []interface{}{big.NewInt(params.Guess)},
			event:    "BetResult",
		}, ""

	case models.OpSetDifficulty:
		if !params.Tier.Valid() {
			return txPlan{}, fmt.Sprintf("unknown difficulty tier %q", params.Tier)
		}
		return txPlan{
			contract: game,
			method:   "setDifficulty",
			args:     []interface{}{params.Tier.ContractValue()},
			event:    "DifficultyChanged",
		}, ""

	case models.OpRevealNumber:
		return txPlan{contract: game, method: "revealNumber", event: "NumberRevealed"}, ""

	default:
		return txPlan{}, fmt.Sprintf("unknown operation kind %q", kind)
	}
}

// applyResult performs the post-confirmation state transitions: event field
// extraction, display republish and balance reconciliation. Runs only after
// the receipt is in; nothing here is optimistic.
func (o *Orchestrator) applyResult(ctx context.Context, kind models.OperationKind, params OperationParams, plan txPlan, fields map[string]interface{}, found bool, outcome *models.Outcome) {
	switch kind {
	case models.OpPlaceBet:
		if found {
			if won, ok := fields["won"].(bool); ok {
				outcome.Won = &won
				if won {
					outcome.Message = "You won!"
				} else {
					outcome.Message = "You lost!"
				}
			}
		}
		message := outcome.Message
		o.state.Publish(func(ds *models.DisplayState) {
			ds.Message = message
			ds.Error = nil
		})

	case models.OpSetDifficulty:
		o.mu.Lock()
		o.tier = params.Tier
		o.mu.Unlock()
		tier := params.Tier
		o.state.Publish(func(ds *models.DisplayState) {
			ds.Tier = tier
			ds.TierLimits = tier.Limits()
			ds.Message = fmt.Sprintf("Difficulty set to %s", tier)
			ds.Error = nil
		})
		if outcome.Message == "" {
			outcome.Message = fmt.Sprintf("Difficulty set to %s", tier)
		}

	case models.OpRevealNumber:
		var revealed *int64
		if found {
			if n, ok := fields["number"].(*big.Int); ok {
				v := n.Int64()
				revealed = &v
			}
		}
		outcome.Revealed = revealed
		if revealed != nil && outcome.Message == "" {
			outcome.Message = fmt.Sprintf("The number was %d", *revealed)
		}
		message := outcome.Message
		o.state.Publish(func(ds *models.DisplayState) {
			ds.RevealedNumber = revealed
			ds.Message = message
			ds.Error = nil
		})

	default: // deposit, withdraw, transfer
		if outcome.Message == "" {
			outcome.Message = "Transaction confirmed"
		}
		message := outcome.Message
		o.state.Publish(func(ds *models.DisplayState) {
			ds.Message = message
			ds.Error = nil
		})
	}

	switch kind {
	case models.OpDeposit, models.OpWithdraw, models.OpTransfer, models.OpPlaceBet:
		if _, err := o.reconciler.RefreshBalance(ctx, plan.contract); err != nil {
			log.Printf("Failed to refresh balance after %s: %v", kind, err)
		}
	}
}

func (o *Orchestrator) fail(record *models.OperationRecord, kind models.OperationKind, err error) models.Outcome {
	errKind := Classify(err)
	message := DisplayMessage(errKind, err)

	o.state.Publish(func(ds *models.DisplayState) {
		ds.Error = &models.ClassifiedError{Kind: errKind, Message: message}
	})

	outcome := models.Outcome{
		Kind:      kind,
		Status:    models.StatusFailed,
		ErrorKind: errKind,
		Message:   message,
	}
	if record != nil {
		outcome.OperationID = record.ID
		outcome.TxHash = record.TxHash
		record.Status = models.StatusFailed
		record.ErrorKind = errKind
		record.Message = message
		record.CompletedAt = time.Now()
		o.journal(record)
		o.untrackPending(record.ID)
	} else {
		outcome.OperationID = models.GenerateOperationID()
	}

	return outcome
}

func (o *Orchestrator) journal(record *models.OperationRecord) {
	if o.redis == nil {
		return
	}
	if err := o.redis.SaveOperation(record); err != nil {
		log.Printf("Failed to journal operation %s: %v", record.ID, err)
	}
}

func (o *Orchestrator) trackPending(id string) {
	o.pendingMu.Lock()
	o.pending[id] = time.Now()
	o.pendingMu.Unlock()
}

func (o *Orchestrator) untrackPending(id string) {
	o.pendingMu.Lock()
	delete(o.pending, id)
	o.pendingMu.Unlock()
}

// CleanupStaleOperations marks journal entries for operations that never
// reached a terminal status as abandoned. Display bookkeeping only; the
// chain remains the authority on whether they took effect.
func (o *Orchestrator) CleanupStaleOperations(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	o.pendingMu.Lock()
	var stale []string
	for id, started := range o.pending {
		if started.Before(cutoff) {
			stale = append(stale, id)
			delete(o.pending, id)
		}
	}
	o.pendingMu.Unlock()

	for _, id := range stale {
		log.Printf("Operation %s stale after %s, marking abandoned", id, maxAge)
		if o.redis != nil {
			if err := o.redis.MarkOperationAbandoned(id); err != nil {
				log.Printf("Failed to mark operation %s abandoned: %v", id, err)
			}
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
