package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, accessDuration time.Duration) *TokenService {
	t.Helper()

	svc, err := NewTokenService(strings.Repeat("ab", 32), accessDuration, 7*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func testTokenUser() *domain.User {
	return &domain.User{
		ID:       "user-001",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestNewTokenService_InvalidKey(t *testing.T) {
	_, err := NewTokenService("too-short", time.Minute, time.Hour)
	assert.Error(t, err)

	// Right length, not hex.
	_, err = NewTokenService(strings.Repeat("zz", 32), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	token, err := svc.GenerateAccessToken(testTokenUser())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "user-001", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.GenerateAccessToken(testTokenUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_WrongKey(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	token, err := svc.GenerateAccessToken(testTokenUser())
	require.NoError(t, err)

	other, err := NewTokenService(strings.Repeat("cd", 32), 15*time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	_, err := svc.VerifyAccessToken("not a token")
	assert.Error(t, err)
}

func TestGenerateRefreshToken(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	first, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Hashing is deterministic so stored hashes can be matched.
	assert.Equal(t, HashRefreshToken(first), HashRefreshToken(first))
	assert.NotEqual(t, HashRefreshToken(first), HashRefreshToken(second))
}
