package models

import "fmt"

type AmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type TransferRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
}

type BetRequest struct {
	Stake string `json:"stake" binding:"required"`
	Guess int64  `json:"guess" binding:"required"`
}

type DifficultyRequest struct {
	Tier DifficultyTier `json:"tier" binding:"required"`
}

// Validate checks that the amount parses into the contract's fixed-point
// representation and is positive. Syntactic only; no network involved.
func (r *AmountRequest) Validate() error {
	if _, err := ParseEther(r.Amount); err != nil {
		return fmt.Errorf("invalid amount %q: %v", r.Amount, err)
	}
	return nil
}

func (r *TransferRequest) Validate() error {
	if _, err := ParseEther(r.Amount); err != nil {
		return fmt.Errorf("invalid amount %q: %v", r.Amount, err)
	}
	if !ValidAddress(r.Recipient) {
		return fmt.Errorf("invalid recipient address %q", r.Recipient)
	}
	return nil
}

func (r *DifficultyRequest) Validate() error {
	if !r.Tier.Valid() {
		return fmt.Errorf("unknown difficulty tier %q", r.Tier)
	}
	return nil
}
