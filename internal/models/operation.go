package models

import "time"

type OperationKind string

const (
	OpDeposit       OperationKind = "deposit"
	OpWithdraw      OperationKind = "withdraw"
	OpTransfer      OperationKind = "transfer"
	OpPlaceBet      OperationKind = "place_bet"
	OpSetDifficulty OperationKind = "set_difficulty"
	OpRevealNumber  OperationKind = "reveal_number"
)

type OperationStatus string

const (
	StatusPending          OperationStatus = "pending"
	StatusConfirmed        OperationStatus = "confirmed"
	StatusSubmittedNoEvent OperationStatus = "submitted_no_event"
	StatusValidationFailed OperationStatus = "validation_failed"
	StatusFailed           OperationStatus = "failed"
	StatusAbandoned        OperationStatus = "abandoned"
)

// Terminal reports whether the status ends an operation's lifecycle.
func (s OperationStatus) Terminal() bool {
	return s != StatusPending
}

type ErrorKind string

const (
	ErrKindInsufficientFunds   ErrorKind = "insufficient_funds"
	ErrKindUserRejected        ErrorKind = "user_rejected"
	ErrKindProviderUnavailable ErrorKind = "provider_unavailable"
	ErrKindTransactionFailed   ErrorKind = "transaction_failed"
)

// OperationRecord is the journaled form of one state-changing call.
type OperationRecord struct {
	ID          string          `json:"id" redis:"id"`
	Account     string          `json:"account" redis:"account"`
	Kind        OperationKind   `json:"kind" redis:"kind"`
	Amount      string          `json:"amount,omitempty" redis:"amount"`
	Recipient   string          `json:"recipient,omitempty" redis:"recipient"`
	Guess       int64           `json:"guess,omitempty" redis:"guess"`
	Tier        DifficultyTier  `json:"tier,omitempty" redis:"tier"`
	Status      OperationStatus `json:"status" redis:"status"`
	TxHash      string          `json:"tx_hash,omitempty" redis:"tx_hash"`
	Message     string          `json:"message,omitempty" redis:"message"`
	ErrorKind   ErrorKind       `json:"error_kind,omitempty" redis:"error_kind"`
	SubmittedAt time.Time       `json:"submitted_at" redis:"submitted_at"`
	CompletedAt time.Time       `json:"completed_at,omitempty" redis:"completed_at"`
}

// Outcome is the terminal result of one orchestrated call.
type Outcome struct {
	OperationID string          `json:"operation_id"`
	Kind        OperationKind   `json:"kind"`
	Status      OperationStatus `json:"status"`
	Message     string          `json:"message,omitempty"`
	ErrorKind   ErrorKind       `json:"error_kind,omitempty"`
	TxHash      string          `json:"tx_hash,omitempty"`
	Won         *bool           `json:"won,omitempty"`
	Revealed    *int64          `json:"revealed,omitempty"`
}

func (o Outcome) Success() bool {
	return o.Status == StatusConfirmed || o.Status == StatusSubmittedNoEvent
}
