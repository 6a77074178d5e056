package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(now *time.Time) *LoginThrottle {
	th := NewLoginThrottle(NewMemoryAttemptStore(), 3, 15*time.Minute)
	th.now = func() time.Time { return *now }
	return th
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	now := time.Now()
	th := newTestThrottle(&now)

	for i := 0; i < 3; i++ {
		require.NoError(t, th.Check("a@x.com"))
		require.NoError(t, th.RecordFailure("a@x.com"))
	}

	err := th.Check("a@x.com")
	var tooMany *TooManyAttemptsError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, 15, retryMinutes(tooMany.RetryAfter))
}

func TestLoginThrottle_WindowElapsesAndResets(t *testing.T) {
	now := time.Now()
	th := newTestThrottle(&now)

	for i := 0; i < 3; i++ {
		require.NoError(t, th.RecordFailure("a@x.com"))
	}
	require.Error(t, th.Check("a@x.com"))

	now = now.Add(16 * time.Minute)
	assert.NoError(t, th.Check("a@x.com"))

	// The record was dropped: one more failure starts counting from one.
	require.NoError(t, th.RecordFailure("a@x.com"))
	assert.NoError(t, th.Check("a@x.com"))
}

func TestLoginThrottle_RetryMinutesShrink(t *testing.T) {
	now := time.Now()
	th := newTestThrottle(&now)

	for i := 0; i < 3; i++ {
		require.NoError(t, th.RecordFailure("a@x.com"))
	}

	now = now.Add(10*time.Minute + 30*time.Second)
	err := th.Check("a@x.com")
	var tooMany *TooManyAttemptsError
	require.True(t, errors.As(err, &tooMany))
	// 4m30s left rounds up to 5 minutes.
	assert.Equal(t, 5, retryMinutes(tooMany.RetryAfter))
}

func TestLoginThrottle_SuccessClearsRecord(t *testing.T) {
	now := time.Now()
	th := newTestThrottle(&now)

	require.NoError(t, th.RecordFailure("a@x.com"))
	require.NoError(t, th.RecordFailure("a@x.com"))
	require.NoError(t, th.RecordSuccess("a@x.com"))

	attempt, err := th.store.Get("a@x.com")
	require.NoError(t, err)
	assert.Nil(t, attempt)
}

func TestLoginThrottle_KeysAreIndependent(t *testing.T) {
	now := time.Now()
	th := newTestThrottle(&now)

	for i := 0; i < 3; i++ {
		require.NoError(t, th.RecordFailure("ghost@x.com"))
	}
	require.Error(t, th.Check("ghost@x.com"))
	assert.NoError(t, th.Check("other@x.com"))
}

func TestMemoryAttemptStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryAttemptStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment("a@x.com", now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	attempt, err := store.Get("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, 100, attempt.Count)
}
