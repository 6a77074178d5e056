package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistenfrota/auth-service/internal/services"
)

func TestValidatePassword_AllRulesReported(t *testing.T) {
	violations := services.ValidatePassword("abc")
	// short, no uppercase, no digit, no special — every rule is listed.
	assert.Len(t, violations, 4)
}

func TestValidatePassword_Valid(t *testing.T) {
	assert.Empty(t, services.ValidatePassword("Aa1!aaaa"))
}

func TestValidatePassword_MissingSingleRule(t *testing.T) {
	cases := map[string]string{
		"aa1!aaaa": "uppercase",
		"AA1!AAAA": "lowercase",
		"Aaa!aaaa": "number",
		"Aa1aaaaa": "special",
	}
	for password, missing := range cases {
		violations := services.ValidatePassword(password)
		require.Len(t, violations, 1, "password %q should only miss %s", password, missing)
		assert.Contains(t, violations[0], missing)
	}
}

func TestHashPassword_VerifyRoundtrip(t *testing.T) {
	hash, err := services.HashPassword("Aa1!aaaa", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "Aa1!aaaa", hash)

	assert.True(t, services.CheckPasswordHash("Aa1!aaaa", hash))
	assert.False(t, services.CheckPasswordHash("Aa1!aaab", hash))
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := services.HashPassword("Aa1!aaaa", 0)
	require.NoError(t, err)
	assert.True(t, services.CheckPasswordHash("Aa1!aaaa", hash))
}
