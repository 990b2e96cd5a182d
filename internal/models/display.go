package models

import "time"

// ClassifiedError is the user-displayable form of a failed operation.
type ClassifiedError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// DisplayState is the derived projection shown to the user. It is recomputed
// from confirmed remote reads after every terminal operation and is never the
// source of truth for balances; the contract is.
type DisplayState struct {
	Account        string           `json:"account,omitempty"`
	Balance        string           `json:"balance,omitempty"`
	Message        string           `json:"message,omitempty"`
	RevealedNumber *int64           `json:"revealed_number,omitempty"`
	Tier           DifficultyTier   `json:"tier,omitempty"`
	TierLimits     TierLimits       `json:"tier_limits"`
	Error          *ClassifiedError `json:"error,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
