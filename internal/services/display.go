package services

import (
	"sync"
	"time"

	"onchain-teller-backend/internal/models"
)

// DisplayStore owns the derived projection shown to the user. Snapshots are
// replaced whole on every publish, never patched in place, so readers always
// see a consistent recomputed state.
type DisplayStore struct {
	mu          sync.RWMutex
	state       models.DisplayState
	broadcaster Broadcaster
}

func NewDisplayStore(broadcaster Broadcaster) *DisplayStore {
	return &DisplayStore{broadcaster: broadcaster}
}

func (s *DisplayStore) Snapshot() models.DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Publish recomputes the snapshot through mutate, installs it and pushes it
// to subscribed clients. Returns the new snapshot.
func (s *DisplayStore) Publish(mutate func(*models.DisplayState)) models.DisplayState {
	s.mu.Lock()
	next := s.state
	mutate(&next)
	next.UpdatedAt = time.Now()
	s.state = next
	s.mu.Unlock()

	if s.broadcaster != nil && next.Account != "" {
		s.broadcaster.BroadcastDisplayState(next.Account, next)
	}

	return next
}
