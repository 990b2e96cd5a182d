package models

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/google/uuid"
)

func GenerateOperationID() string {
	return fmt.Sprintf("op_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSessionID() string {
	return uuid.NewString()
}

// ParseEther converts a decimal ether string ("1.5") to wei. Rejects
// non-numeric, zero and negative amounts, and more than 18 fractional digits.
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("not a decimal number")
	}
	if rat.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	wei := new(big.Rat).Mul(rat, new(big.Rat).SetInt(big.NewInt(params.Ether)))
	if !wei.IsInt() {
		return nil, fmt.Errorf("more precision than 18 decimals")
	}

	return wei.Num(), nil
}

// FormatEther renders a wei amount as a decimal ether string with trailing
// zeros trimmed, matching what the contract reads return.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	rat := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	s := rat.FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func ValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

// EtherFloatToWei converts a tier-table constant to wei. Table values are
// exact halves so the conversion never truncates.
func EtherFloatToWei(eth float64) *big.Int {
	rat := new(big.Rat).SetFloat64(eth)
	wei := new(big.Rat).Mul(rat, new(big.Rat).SetInt(big.NewInt(params.Ether)))
	out := new(big.Int).Div(wei.Num(), wei.Denom())
	return out
}

// Contains reports whether a stake in wei lies within the tier's bet bounds.
func (l TierLimits) Contains(stakeWei *big.Int) bool {
	if stakeWei == nil {
		return false
	}
	return stakeWei.Cmp(EtherFloatToWei(l.MinBet)) >= 0 &&
		stakeWei.Cmp(EtherFloatToWei(l.MaxBet)) <= 0
}
