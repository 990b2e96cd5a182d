package services_test

import (
	"context"
	"errors"
	"testing"

	"onchain-teller-backend/internal/models"
	"onchain-teller-backend/internal/services"
)

type fakeProvider struct {
	accounts   []string
	requestErr error
}

func (p *fakeProvider) Accounts(ctx context.Context) ([]string, error) {
	return p.accounts, nil
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return p.accounts, nil
}

func TestConnectWithoutProvider(t *testing.T) {
	sessions := services.NewSessionManager(nil)

	account, err := sessions.Connect(context.Background())
	if !errors.Is(err, services.ErrProviderUnavailable) {
		t.Fatalf("Expected provider unavailable, got %v", err)
	}
	if account != "" {
		t.Errorf("No account should be active, got %q", account)
	}
	if kind := services.Classify(err); kind != models.ErrKindProviderUnavailable {
		t.Errorf("Expected provider_unavailable classification, got %s", kind)
	}
}

func TestConnectSelectsFirstAccount(t *testing.T) {
	sessions := services.NewSessionManager(&fakeProvider{
		accounts: []string{"0xAA", "0xBB"},
	})

	account, err := sessions.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if account != "0xAA" {
		t.Errorf("Expected first account to become active, got %q", account)
	}
	if sessions.Active() != "0xAA" {
		t.Errorf("Active account not recorded, got %q", sessions.Active())
	}
}

func TestConnectEmptyAccountListIsIdle(t *testing.T) {
	sessions := services.NewSessionManager(&fakeProvider{})

	account, err := sessions.Connect(context.Background())
	if err != nil {
		t.Fatalf("Empty account list should not be an error, got %v", err)
	}
	if account != "" {
		t.Errorf("Expected no active account, got %q", account)
	}
	if sessions.Active() != "" {
		t.Error("Session should stay unconnected")
	}
}

func TestConnectUserRejection(t *testing.T) {
	sessions := services.NewSessionManager(&fakeProvider{
		requestErr: errors.New("user rejected the request"),
	})

	_, err := sessions.Connect(context.Background())
	if err == nil {
		t.Fatal("Expected rejection to surface")
	}
	if kind := services.Classify(err); kind != models.ErrKindUserRejected {
		t.Errorf("Expected user_rejected classification, got %s", kind)
	}
	if sessions.Active() != "" {
		t.Error("Rejected connect must not set an active account")
	}
}

func TestSelectActiveAccount(t *testing.T) {
	if got := services.SelectActiveAccount(nil); got != "" {
		t.Errorf("Empty sequence should yield none, got %q", got)
	}
	if got := services.SelectActiveAccount([]string{"0x01", "0x02"}); got != "0x01" {
		t.Errorf("Expected first account, got %q", got)
	}
}
