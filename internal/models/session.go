package models

import "time"

// WalletSession records which external account is authorized to sign
// operations. It lives for the lifetime of the client; there is no
// disconnect transition.
type WalletSession struct {
	SessionID    string    `json:"session_id" redis:"session_id"`
	Account      string    `json:"account" redis:"account"`
	CreatedAt    time.Time `json:"created_at" redis:"created_at"`
	LastAccessed time.Time `json:"last_accessed" redis:"last_accessed"`
}

func (s *WalletSession) Connected() bool {
	return s != nil && s.Account != ""
}
