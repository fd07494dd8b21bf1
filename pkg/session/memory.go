package session

import (
	"sync"
	"time"
)

// MemoryStore keeps the session tokens in process memory. Both tokens and
// their deadlines are replaced under one lock, so readers see either the old
// pair or the new pair, never a mix.
type MemoryStore struct {
	mu             sync.RWMutex
	tokens         Tokens
	accessExpires  time.Time
	refreshExpires time.Time
	now            func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Read returns the current tokens. A token past its deadline reads back as
// absent.
func (s *MemoryStore) Read() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	tokens := s.tokens
	if !s.accessExpires.IsZero() && now.After(s.accessExpires) {
		tokens.Access = ""
	}
	if !s.refreshExpires.IsZero() && now.After(s.refreshExpires) {
		tokens.Refresh = ""
	}
	return tokens
}

// Persist replaces both tokens and their lifetimes. Non-positive TTLs fall
// back to the defaults.
func (s *MemoryStore) Persist(t Tokens, accessTTL, refreshTTL time.Duration) {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.tokens = t
	s.accessExpires = now.Add(accessTTL)
	s.refreshExpires = now.Add(refreshTTL)
}

// Clear removes both tokens.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = Tokens{}
	s.accessExpires = time.Time{}
	s.refreshExpires = time.Time{}
}
