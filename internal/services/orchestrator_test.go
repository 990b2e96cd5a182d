package services_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

// fakeContract stands in for a bound contract. It counts every remote call
// so tests can assert that local validation issues none.
type fakeContract struct {
	balance       *big.Int
	transactErr   error
	waitErr       error
	events        map[string]map[string]interface{}
	callCount     int
	transactCount int
}

func newFakeContract(balanceEther string) *fakeContract {
	wei, _ := models.ParseEther(balanceEther)
	return &fakeContract{
		balance: wei,
		events:  make(map[string]map[string]interface{}),
	}
}

func (f *fakeContract) Account() string { return "0xAA" }

func (f *fakeContract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	f.callCount++
	return []interface{}{new(big.Int).Set(f.balance)}, nil
}

func (f *fakeContract) Transact(ctx context.Context, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	f.transactCount++
	if f.transactErr != nil {
		return common.Hash{}, f.transactErr
	}
	return common.HexToHash("0x01"), nil
}

func (f *fakeContract) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (f *fakeContract) DecodeEvent(receipt *types.Receipt, name string) (map[string]interface{}, bool) {
	fields, ok := f.events[name]
	return fields, ok
}

func (f *fakeContract) remoteCalls() int {
	return f.callCount + f.transactCount
}

func newTestOrchestrator() (*services.Orchestrator, *services.DisplayStore) {
	state := services.NewDisplayStore(nil)
	reconciler := services.NewReconciler(state, nil)
	return services.NewOrchestrator(state, reconciler, nil), state
}

func TestDepositConfirmationRefreshesBalanceOnce(t *testing.T) {
	orchestrator, state := newTestOrchestrator()
	atm := newFakeContract("5")
	atm.events["Deposit"] = map[string]interface{}{}
	orchestrator.Attach(atm, nil)

	outcome := orchestrator.Execute(context.Background(), models.OpDeposit, services.OperationParams{
		Amount: "1",
	})

	if outcome.Status != models.StatusConfirmed {
		t.Fatalf("Expected confirmed, got %s (%s)", outcome.Status, outcome.Message)
	}
	if atm.transactCount != 1 {
		t.Errorf("Expected exactly one submission, got %d", atm.transactCount)
	}
	if atm.callCount != 1 {
		t.Errorf("Expected exactly one balance refresh, got %d", atm.callCount)
	}
	if state.Snapshot().Balance != "5" {
		t.Errorf("Expected reconciled balance 5, got %q", state.Snapshot().Balance)
	}
}

func TestDepositInvalidAmountShortCircuits(t *testing.T) {
	orchestrator, _ := newTestOrchestrator()
	atm := newFakeContract("5")
	orchestrator.Attach(atm, nil)

	for _, bad := range []string{"abc", "-1", "0", ""} {
		outcome := orchestrator.Execute(context.Background(), models.OpDeposit, services.OperationParams{
			Amount: bad,
		})
		if outcome.Status != models.StatusValidationFailed {
			t.Errorf("Amount %q: expected validation_failed, got %s", bad, outcome.Status)
		}
	}

	if atm.remoteCalls() != 0 {
		t.Errorf("Validation failures must issue zero remote calls, got %d", atm.remoteCalls())
	}
}

func TestPlaceBetOutsideActiveTierBounds(t *testing.T) {
	orchestrator, _ := newTestOrchestrator()
	game := newFakeContract("5")
	orchestrator.Attach(newFakeContract("5"), game)

	// Active tier defaults to easy (0.5–2 ETH).
	outcome := orchestrator.Execute(context.Background(), models.OpPlaceBet, services.OperationParams{
		Stake: "3",
		Guess: 5,
	})

	if outcome.Status != models.StatusValidationFailed {
		t.Fatalf("Expected validation_failed, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "0.5") || !strings.Contains(outcome.Message, "2") {
		t.Errorf("Validation message should carry the tier bounds, got %q", outcome.Message)
	}
	if game.remoteCalls() != 0 {
		t.Errorf("Expected zero remote calls, got %d", game.remoteCalls())
	}
}

func TestPlaceBetWin(t *testing.T) {
	orchestrator, state := newTestOrchestrator()
	game := newFakeContract("6")
	game.events["BetResult"] = map[string]interface{}{"won": true}
	orchestrator.Attach(newFakeContract("6"), game)

	outcome := orchestrator.Execute(context.Background(), models.OpPlaceBet, services.OperationParams{
		Stake: "1.0",
		Guess: 5,
	})

	if outcome.Status != models.StatusConfirmed {
		t.Fatalf("Expected confirmed, got %s (%s)", outcome.Status, outcome.Message)
	}
	if outcome.Won == nil || !*outcome.Won {
		t.Error("Expected a won outcome")
	}
	if outcome.Message != "You won!" {
		t.Errorf("Expected win message, got %q", outcome.Message)
	}
	if state.Snapshot().Message != "You won!" {
		t.Errorf("Display message not published, got %q", state.Snapshot().Message)
	}
	if game.callCount != 1 {
		t.Errorf("Expected one balance refresh after bet, got %d", game.callCount)
	}
}

func TestMissingEventIsDegradedSuccess(t *testing.T) {
	orchestrator, _ := newTestOrchestrator()
	atm := newFakeContract("5")
	orchestrator.Attach(atm, nil)

	outcome := orchestrator.Execute(context.Background(), models.OpDeposit, services.OperationParams{
		Amount: "1",
	})

	if outcome.Status != models.StatusSubmittedNoEvent {
		t.Fatalf("Expected submitted_no_event, got %s", outcome.Status)
	}
	if !outcome.Success() {
		t.Error("Degraded success should still count as success")
	}
	if atm.callCount != 1 {
		t.Error("Degraded success should still trigger reconciliation")
	}
}

func TestInsufficientFundsFailure(t *testing.T) {
	orchestrator, state := newTestOrchestrator()
	atm := newFakeContract("0.1")
	atm.transactErr = errors.New("execution reverted: Insufficient balance")
	orchestrator.Attach(atm, nil)

	outcome := orchestrator.Execute(context.Background(), models.OpWithdraw, services.OperationParams{
		Amount: "1",
	})

	if outcome.Status != models.StatusFailed {
		t.Fatalf("Expected failed, got %s", outcome.Status)
	}
	if outcome.ErrorKind != models.ErrKindInsufficientFunds {
		t.Errorf("Expected insufficient_funds, got %s", outcome.ErrorKind)
	}
	if state.Snapshot().Error == nil || state.Snapshot().Error.Kind != models.ErrKindInsufficientFunds {
		t.Error("Classified error should be published to display state")
	}
	if atm.callCount != 0 {
		t.Error("Failed operation must not trigger a balance refresh")
	}
}

func TestSetDifficultyTierSwitchOrdering(t *testing.T) {
	orchestrator, _ := newTestOrchestrator()
	game := newFakeContract("5")
	game.waitErr = errors.New("transaction reverted")
	orchestrator.Attach(newFakeContract("5"), game)

	outcome := orchestrator.Execute(context.Background(), models.OpSetDifficulty, services.OperationParams{
		Tier: models.TierMedium,
	})
	if outcome.Status != models.StatusFailed {
		t.Fatalf("Expected failure, got %s", outcome.Status)
	}
	if orchestrator.ActiveTier() != models.TierEasy {
		t.Errorf("Failed switch must leave the active tier unchanged, got %s", orchestrator.ActiveTier())
	}

	game.waitErr = nil
	game.events["DifficultyChanged"] = map[string]interface{}{}
	outcome = orchestrator.Execute(context.Background(), models.OpSetDifficulty, services.OperationParams{
		Tier: models.TierMedium,
	})
	if outcome.Status != models.StatusConfirmed {
		t.Fatalf("Expected confirmation, got %s (%s)", outcome.Status, outcome.Message)
	}
	if orchestrator.ActiveTier() != models.TierMedium {
		t.Errorf("Confirmed switch should activate the new tier, got %s", orchestrator.ActiveTier())
	}

	// Bets now validate against the newly confirmed tier's bounds.
	betOutcome := orchestrator.Execute(context.Background(), models.OpPlaceBet, services.OperationParams{
		Stake: "1",
		Guess: 5,
	})
	if betOutcome.Status != models.StatusValidationFailed {
		t.Errorf("1 ETH should be below the medium minimum, got %s", betOutcome.Status)
	}
}

func TestRevealNumber(t *testing.T) {
	orchestrator, state := newTestOrchestrator()
	game := newFakeContract("5")
	game.events["NumberRevealed"] = map[string]interface{}{"number": big.NewInt(42)}
	orchestrator.Attach(newFakeContract("5"), game)

	outcome := orchestrator.Execute(context.Background(), models.OpRevealNumber, services.OperationParams{})

	if outcome.Status != models.StatusConfirmed {
		t.Fatalf("Expected confirmed, got %s", outcome.Status)
	}
	if outcome.Revealed == nil || *outcome.Revealed != 42 {
		t.Error("Expected revealed number 42")
	}
	snapshot := state.Snapshot()
	if snapshot.RevealedNumber == nil || *snapshot.RevealedNumber != 42 {
		t.Error("Revealed number should be published to display state")
	}
}

func TestExecuteWithoutBinding(t *testing.T) {
	orchestrator, _ := newTestOrchestrator()

	outcome := orchestrator.Execute(context.Background(), models.OpDeposit, services.OperationParams{
		Amount: "1",
	})

	if outcome.Status != models.StatusFailed {
		t.Fatalf("Expected failure without a binding, got %s", outcome.Status)
	}
	if outcome.ErrorKind != models.ErrKindProviderUnavailable {
		t.Errorf("Expected provider_unavailable, got %s", outcome.ErrorKind)
	}
}

func TestRefreshBalanceIdempotent(t *testing.T) {
	state := services.NewDisplayStore(nil)
	reconciler := services.NewReconciler(state, nil)
	atm := newFakeContract("3.5")

	first, err := reconciler.RefreshBalance(context.Background(), atm)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	second, err := reconciler.RefreshBalance(context.Background(), atm)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if first != second {
		t.Errorf("Refresh should be idempotent: %q then %q", first, second)
	}
	if state.Snapshot().Balance != "3.5" {
		t.Errorf("Expected balance 3.5, got %q", state.Snapshot().Balance)
	}
}
