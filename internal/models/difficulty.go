package models

type DifficultyTier string

const (
	TierEasy   DifficultyTier = "easy"
	TierMedium DifficultyTier = "medium"
	TierHard   DifficultyTier = "hard"
)

// TierLimits are the fixed constants bundled with a difficulty tier.
// Bet bounds are in ether; MaxGuessRange is the top of the guessable range.
type TierLimits struct {
	MinBet        float64 `json:"min_bet"`
	MaxBet        float64 `json:"max_bet"`
	MaxGuessRange int64   `json:"max_guess_range"`
}

var tierTable = map[DifficultyTier]TierLimits{
	TierEasy:   {MinBet: 0.5, MaxBet: 2, MaxGuessRange: 10},
	TierMedium: {MinBet: 2, MaxBet: 5, MaxGuessRange: 50},
	TierHard:   {MinBet: 5, MaxBet: 10, MaxGuessRange: 100},
}

func (t DifficultyTier) Valid() bool {
	_, ok := tierTable[t]
	return ok
}

// Limits returns the tier's fixed constants. Unknown tiers fall back to easy
// so the caller always gets usable bounds; validate with Valid() first.
func (t DifficultyTier) Limits() TierLimits {
	if limits, ok := tierTable[t]; ok {
		return limits
	}
	return tierTable[TierEasy]
}

// ContractValue maps the tier to the numeric value the contract expects.
func (t DifficultyTier) ContractValue() uint8 {
	switch t {
	case TierMedium:
		return 1
	case TierHard:
		return 2
	default:
		return 0
	}
}
