package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(accessTTL, refreshTTL time.Duration) *TokenManager {
	return NewTokenManager(TokenManagerConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        "tradepost",
	})
}

func TestIssuePairAndVerify(t *testing.T) {
	tm := newTestTokenManager(15*time.Minute, 24*time.Hour)

	pair, refreshClaims, err := tm.IssuePair(42, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, refreshClaims)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := tm.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	userID, err := access.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "alice@example.com", access.Email)
	assert.Equal(t, TokenTypeAccess, access.TokenType)

	refresh, err := tm.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)

	jti, err := refresh.JTI()
	require.NoError(t, err)
	wantJTI, err := refreshClaims.JTI()
	require.NoError(t, err)
	assert.Equal(t, wantJTI, jti)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	tm := newTestTokenManager(15*time.Minute, 24*time.Hour)
	pair, _, err := tm.IssuePair(7, "bob@example.com")
	require.NoError(t, err)

	_, err = tm.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)

	_, err = tm.VerifyRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	tm := newTestTokenManager(15*time.Minute, 24*time.Hour)
	pair, _, err := tm.IssuePair(7, "bob@example.com")
	require.NoError(t, err)

	other := NewTokenManager(TokenManagerConfig{
		AccessSecret:  "completely-different-secret",
		RefreshSecret: "another-different-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "tradepost",
	})
	_, err = other.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.VerifyAccess(pair.AccessToken + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := newTestTokenManager(-time.Minute, -time.Minute)
	pair, _, err := tm.IssuePair(7, "bob@example.com")
	require.NoError(t, err)

	_, err = tm.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = tm.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestDecodeRefreshToleratesExpiry(t *testing.T) {
	tm := newTestTokenManager(-time.Minute, -time.Minute)
	pair, refreshClaims, err := tm.IssuePair(9, "carol@example.com")
	require.NoError(t, err)

	claims, err := tm.DecodeRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, refreshClaims.ID, claims.ID)
	assert.Equal(t, time.Duration(0), claims.RemainingTTL())

	// Type and signature are still enforced.
	_, err = tm.DecodeRefresh(pair.AccessToken)
	assert.Error(t, err)
}
