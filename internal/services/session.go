package services

import (
	"context"
	"log"
	"sync"
)

// WalletProvider is the account surface of the injected provider.
// Implemented by *chain.Provider; faked in tests.
type WalletProvider interface {
	Accounts(ctx context.Context) ([]string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
}

// SessionManager owns the authenticated account identity. State machine:
// unconnected until a Connect succeeds, connected afterward. There is no
// disconnect transition; a later Connect just replaces the active account.
type SessionManager struct {
	mu       sync.RWMutex
	provider WalletProvider
	account  string
}

// NewSessionManager wraps the detected provider. A nil provider is the
// "absent" state; Connect then reports provider_unavailable.
func NewSessionManager(provider WalletProvider) *SessionManager {
	return &SessionManager{provider: provider}
}

func (m *SessionManager) ProviderAvailable() bool {
	return m.provider != nil
}

// Active returns the connected account, empty while unconnected.
func (m *SessionManager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account
}

// Accounts lists accounts without prompting the user.
func (m *SessionManager) Accounts(ctx context.Context) ([]string, error) {
	if m.provider == nil {
		return nil, ErrProviderUnavailable
	}
	return m.provider.Accounts(ctx)
}

// Connect requests account access, possibly blocking on wallet approval,
// and makes the first returned account active. An empty account list is a
// normal idle state, not a failure.
func (m *SessionManager) Connect(ctx context.Context) (string, error) {
	if m.provider == nil {
		return "", ErrProviderUnavailable
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return "", err
	}

	account := SelectActiveAccount(accounts)
	if account == "" {
		log.Println("No account found")
		return "", nil
	}

	m.mu.Lock()
	m.account = account
	m.mu.Unlock()

	log.Printf("Account connected: %s", account)
	return account, nil
}

// SelectActiveAccount applies the deterministic policy: the first account in
// the sequence is active; an empty sequence yields none.
func SelectActiveAccount(accounts []string) string {
	if len(accounts) == 0 {
		return ""
	}
	return accounts[0]
}
