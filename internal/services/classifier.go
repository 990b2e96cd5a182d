package services

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"onchain-teller-backend/internal/models"
)

// ErrProviderUnavailable is returned when an operation needs a wallet
// provider and none was detected.
var ErrProviderUnavailable = errors.New("no wallet provider available")

var insufficiencyMarkers = []string{
	"insufficient balance",
	"insufficient funds",
}

var rejectionMarkers = []string{
	"user rejected",
	"user denied",
	"rejected by user",
}

// EIP-1193 code for a user-rejected wallet request.
const codeUserRejected = 4001

// Classify maps a raw network-path failure to its display taxonomy. Pure and
// total: every error lands on exactly one kind, and anything unrecognized
// falls through to transaction_failed.
func Classify(err error) models.ErrorKind {
	if err == nil {
		return models.ErrKindTransactionFailed
	}

	msg := strings.ToLower(err.Error())

	for _, marker := range insufficiencyMarkers {
		if strings.Contains(msg, marker) {
			return models.ErrKindInsufficientFunds
		}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return models.ErrKindUserRejected
	}
	for _, marker := range rejectionMarkers {
		if strings.Contains(msg, marker) {
			return models.ErrKindUserRejected
		}
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return models.ErrKindProviderUnavailable
	}

	return models.ErrKindTransactionFailed
}

// DisplayMessage renders the classified failure for the UI. The raw message
// is preserved verbatim only for the catch-all kind.
func DisplayMessage(kind models.ErrorKind, err error) string {
	switch kind {
	case models.ErrKindInsufficientFunds:
		return "Insufficient balance"
	case models.ErrKindUserRejected:
		return "Transaction rejected in wallet"
	case models.ErrKindProviderUnavailable:
		return "No wallet provider available"
	default:
		if err == nil {
			return "Transaction failed"
		}
		return err.Error()
	}
}
