package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := newTestService()

	token, expiresIn, err := service.GenerateAccessToken("user-1", "+94771234567", []string{"passenger"})
	require.NoError(t, err)
	assert.Equal(t, 900, expiresIn)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "+94771234567", claims.Phone)
	assert.Equal(t, []string{"passenger"}, claims.Roles)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateRefreshToken("user-1", "+94771234567")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestTokenTypeMismatch(t *testing.T) {
	service := newTestService()

	refresh, err := service.GenerateRefreshToken("user-1", "+94771234567")
	require.NoError(t, err)

	// Secrets differ per token type, so the access validator rejects it
	_, err = service.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	service := newTestService()
	other := NewService("different-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)

	token, _, err := service.GenerateAccessToken("user-1", "+94771234567", nil)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	service := NewService("access-secret", "refresh-secret", -time.Minute, 720*time.Hour)

	token, _, err := service.GenerateAccessToken("user-1", "+94771234567", nil)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}
