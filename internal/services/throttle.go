package services

import (
	"sync"
	"time"
)

// LoginAttempt tracks consecutive failures for one identifier. LastFailed is
// refreshed on every failure, so the lockout window is measured from the most
// recent one.
type LoginAttempt struct {
	Count      int
	LastFailed time.Time
}

// AttemptStore holds the per-identifier failure counters. Increment must be
// atomic: two concurrent failures for the same email must both be counted.
// The default implementation is in-memory and therefore single-instance; a
// Redis-backed implementation is available for shared deployments.
type AttemptStore interface {
	Get(email string) (*LoginAttempt, error)
	Increment(email string, now time.Time) (LoginAttempt, error)
	Delete(email string) error
}

type memoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]LoginAttempt
}

func NewMemoryAttemptStore() AttemptStore {
	return &memoryAttemptStore{attempts: make(map[string]LoginAttempt)}
}

func (s *memoryAttemptStore) Get(email string) (*LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *memoryAttemptStore) Increment(email string, now time.Time) (LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attempts[email]
	a.Count++
	a.LastFailed = now
	s.attempts[email] = a
	return a, nil
}

func (s *memoryAttemptStore) Delete(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
	return nil
}

// LoginThrottle rejects login attempts for an identifier after too many
// consecutive failures, independent of whether the account exists. The check
// runs before any credential lookup so the throttle stays opaque to account
// enumeration.
type LoginThrottle struct {
	store       AttemptStore
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewLoginThrottle(store AttemptStore, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Check returns a *TooManyAttemptsError while the identifier is blocked. Once
// the window has elapsed the record is dropped and the identifier starts
// clean.
func (t *LoginThrottle) Check(email string) error {
	attempt, err := t.store.Get(email)
	if err != nil {
		return err
	}
	if attempt == nil || attempt.Count < t.maxAttempts {
		return nil
	}

	elapsed := t.now().Sub(attempt.LastFailed)
	if elapsed < t.window {
		return &TooManyAttemptsError{RetryAfter: t.window - elapsed}
	}

	return t.store.Delete(email)
}

func (t *LoginThrottle) RecordFailure(email string) error {
	_, err := t.store.Increment(email, t.now())
	return err
}

func (t *LoginThrottle) RecordSuccess(email string) error {
	return t.store.Delete(email)
}
