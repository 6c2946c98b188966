package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenPair(t *testing.T) {
	secret := "test-secret-key"

	pair, err := GenerateTokenPair(1, 10, "cashier@example.com", "cashier", secret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}

func TestValidateToken(t *testing.T) {
	secret := "test-secret-key"

	pair, err := GenerateTokenPair(42, 7, "manager@example.com", "manager", secret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(pair.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, uint(7), claims.BusinessID)
	assert.Equal(t, "manager@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, err := GenerateTokenPair(1, 1, "user@example.com", "cashier", "secret-a", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(pair.AccessToken, "secret-b")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	secret := "test-secret-key"

	pair, err := GenerateTokenPair(1, 1, "user@example.com", "cashier", secret, -time.Minute, 24*time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(pair.AccessToken, secret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "test-secret-key")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
