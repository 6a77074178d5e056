package services

import (
	"sync"
	"time"
)

// RevocationStore is the logout blacklist for access tokens. Entries carry
// the token's natural expiry so they can be dropped once the token would have
// died anyway, which bounds memory growth.
type RevocationStore interface {
	Revoke(token string, expiresAt time.Time) error
	IsRevoked(token string) (bool, error)
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *memoryRevocationStore) Revoke(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	s.revoked[token] = expiresAt
	return nil
}

func (s *memoryRevocationStore) IsRevoked(token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[token]
	if !ok {
		return false, nil
	}
	if s.now().After(expiresAt) {
		delete(s.revoked, token)
		return false, nil
	}
	return true, nil
}

// evictExpired runs under the lock. The set only holds tokens revoked within
// their own TTL, so the scan stays small.
func (s *memoryRevocationStore) evictExpired() {
	now := s.now()
	for token, expiresAt := range s.revoked {
		if now.After(expiresAt) {
			delete(s.revoked, token)
		}
	}
}
