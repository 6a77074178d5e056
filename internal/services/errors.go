package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrStaleToken         = errors.New("refresh token no longer valid")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
	ErrMailDelivery       = errors.New("failed to send email")
)

// ValidationError carries the full list of violated rules so clients can show
// every problem at once.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TooManyAttemptsError is returned by the in-process throttle before any
// credential lookup happens.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many login attempts, try again in %d minutes", retryMinutes(e.RetryAfter))
}

// AccountLockedError is returned when the persisted account lock is in force.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", retryMinutes(e.RetryAfter))
}

// retryMinutes rounds the remaining window up to whole minutes, never below 1.
func retryMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}
