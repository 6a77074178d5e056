package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationStore_RevokeAndCheck(t *testing.T) {
	store := NewMemoryRevocationStore()

	require.NoError(t, store.Revoke("token-a", time.Now().Add(time.Hour)))

	revoked, err := store.IsRevoked("token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked("token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStore_EntryExpiresWithToken(t *testing.T) {
	now := time.Now()
	store := &memoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     func() time.Time { return now },
	}

	require.NoError(t, store.Revoke("token-a", now.Add(time.Hour)))

	// Once the token's own TTL has passed, the entry no longer matters and
	// is dropped on access.
	now = now.Add(2 * time.Hour)
	revoked, err := store.IsRevoked("token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, store.revoked)
}

func TestMemoryRevocationStore_RevokeEvictsStaleEntries(t *testing.T) {
	now := time.Now()
	store := &memoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     func() time.Time { return now },
	}

	require.NoError(t, store.Revoke("old", now.Add(time.Minute)))
	now = now.Add(time.Hour)
	require.NoError(t, store.Revoke("new", now.Add(time.Hour)))

	assert.Len(t, store.revoked, 1)
}
