package services

import "time"

const (
	KeyWalletSession     = "session:%s:%s" // account, session id
	KeyDisplaySnapshot   = "display:%s"    // account
	KeyOperation         = "operation:%s"  // operation id
	KeyAccountOperations = "account:%s:operations"
	KeyRateLimit         = "ratelimit:%s:%s" // account, action

	TTLWalletSession   = 24 * time.Hour
	TTLDisplaySnapshot = time.Hour
	TTLOperation       = 30 * 24 * time.Hour // 30 days

	DefaultRateLimitBets = 30 // Max 30 bets per minute
)
