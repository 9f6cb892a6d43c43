package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimewatch-io/crimewatch/internal/models"
)

func TestGeneratePairAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute)

	pair, err := tm.GeneratePair("user-1", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	access, err := tm.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.Subject)
	assert.Equal(t, "alice@example.com", access.Email)
	assert.Equal(t, models.RoleUser, access.Role)

	refresh, err := tm.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.Subject)
	assert.Equal(t, "alice@example.com", refresh.Email)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), refresh.ExpiresAt.Time, time.Minute)
}

func TestGeneratePairMintsDistinctTokens(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute)

	// Two mints for the same principal in the same second must still yield
	// different token strings; session rows key on the refresh token.
	first, err := tm.GeneratePair("user-1", "alice@example.com", models.RoleUser)
	require.NoError(t, err)
	second, err := tm.GeneratePair("user-1", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	a, err := tm.ValidateRefreshToken(first.RefreshToken)
	require.NoError(t, err)
	b, err := tm.ValidateRefreshToken(second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute)
	other := NewTokenManager("other-secret", 15*time.Minute)

	pair, err := other.GeneratePair("user-1", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(pair.AccessToken)
	assert.Equal(t, ErrInvalidToken, err)
	_, err = tm.ValidateRefreshToken(pair.RefreshToken)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateRejectsExpiredAccessToken(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), accessTTL: -time.Minute}

	pair, err := tm.GeneratePair("user-1", "alice@example.com", models.RoleUser)
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(pair.AccessToken)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute)
	_, err := tm.ValidateAccessToken("not.a.jwt")
	assert.Equal(t, ErrInvalidToken, err)
}
