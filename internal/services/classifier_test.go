package services_test

import (
	"errors"
	"fmt"
	"testing"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

// rejectedRPCError mimics a provider EIP-1193 rejection.
type rejectedRPCError struct{}

func (rejectedRPCError) Error() string  { return "request rejected" }
func (rejectedRPCError) ErrorCode() int { return 4001 }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{"insufficiency marker", errors.New("execution reverted: Insufficient balance"), models.ErrKindInsufficientFunds},
		{"insufficiency funds marker", errors.New("err: insufficient funds for gas * price + value"), models.ErrKindInsufficientFunds},
		{"user rejected text", errors.New("MetaMask Tx Signature: User denied transaction signature"), models.ErrKindUserRejected},
		{"user rejected code", rejectedRPCError{}, models.ErrKindUserRejected},
		{"provider unavailable", services.ErrProviderUnavailable, models.ErrKindProviderUnavailable},
		{"wrapped provider unavailable", fmt.Errorf("connect: %w", services.ErrProviderUnavailable), models.ErrKindProviderUnavailable},
		{"unrecognized", errors.New("nonce too low"), models.ErrKindTransactionFailed},
		{"empty", errors.New(""), models.ErrKindTransactionFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := services.Classify(tc.err)
			if got != tc.want {
				t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}

			// Deterministic: same raw failure, same kind.
			if again := services.Classify(tc.err); again != got {
				t.Errorf("Classify not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A message carrying both markers must resolve to insufficiency first.
	err := errors.New("user denied: insufficient balance")
	if got := services.Classify(err); got != models.ErrKindInsufficientFunds {
		t.Errorf("Expected insufficiency to win priority, got %s", got)
	}
}

func TestDisplayMessagePreservesRawText(t *testing.T) {
	raw := errors.New("nonce too low")
	msg := services.DisplayMessage(services.Classify(raw), raw)
	if msg != "nonce too low" {
		t.Errorf("Catch-all should preserve the raw message, got %q", msg)
	}

	funds := errors.New("execution reverted: Insufficient balance, have 0")
	msg = services.DisplayMessage(services.Classify(funds), funds)
	if msg != "Insufficient balance" {
		t.Errorf("Expected canonical insufficiency message, got %q", msg)
	}
}
