package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret-0123456789", time.Minute, time.Hour)

	pair, err := m.GenerateTokens("user-1", "customer")
	require.NoError(t, err)

	claims, err := m.VerifyToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	_, err = m.VerifyToken(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrUnexpectedTokenT)

	_, err = m.VerifyToken(pair.RefreshToken, TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret-0123456789", time.Minute, time.Hour)
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }

	pair, err := m.GenerateTokens("user-1", "customer")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	a := NewTokenManager("secret-a-0123456789", time.Minute, time.Hour)
	b := NewTokenManager("secret-b-0123456789", time.Minute, time.Hour)

	pair, err := a.GenerateTokens("user-1", "admin")
	require.NoError(t, err)

	_, err = b.VerifyToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResponseEnvelope(t *testing.T) {
	ok := SuccessResponse("Added", map[string]int{"n": 1})
	assert.Equal(t, true, ok["success"])
	assert.Equal(t, "Added", ok["message"])
	assert.NotNil(t, ok["data"])

	empty := SuccessResponse("Cleared", nil)
	_, hasData := empty["data"]
	assert.False(t, hasData)

	bad := ErrorResponse("nope")
	assert.Equal(t, false, bad["success"])
	assert.Equal(t, "nope", bad["error"])
}
