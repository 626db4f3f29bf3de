package auth

import (
	"testing"
	"time"

	"github.com/erp/branchcore/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-at-least-32-characters",
		Issuer:                 "branchcore-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()
	branchID := uuid.New()

	t.Run("round trip with branch", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(GenerateTokenInput{
			UserID:   userID,
			Username: "alice",
			BranchID: &branchID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", pair.TokenType)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, branchID.String(), claims.BranchID)
		assert.False(t, claims.SuperAdmin)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.Equal(t, "branchcore-test", claims.Issuer)
	})

	t.Run("super admin without branch", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(GenerateTokenInput{
			UserID:     userID,
			Username:   "root",
			SuperAdmin: true,
		})
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.SuperAdmin)
		assert.Empty(t, claims.BranchID)
	})
}

func TestValidateToken(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Username: "alice"})
	require.NoError(t, err)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                 "a-completely-different-secret-key",
			Issuer:                 "branchcore-test",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: time.Hour,
		})
		_, err := other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-at-least-32-characters",
			Issuer:                 "branchcore-test",
			AccessTokenExpiration:  -time.Minute,
			RefreshTokenExpiration: time.Hour,
		})
		pair, err := expired.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New()})
		require.NoError(t, err)

		_, err = expired.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestClaimsToTenantContext(t *testing.T) {
	userID := uuid.New()
	branchID := uuid.New()

	t.Run("branch principal", func(t *testing.T) {
		claims := &Claims{UserID: userID.String(), BranchID: branchID.String()}
		tctx, err := claims.ToTenantContext()
		require.NoError(t, err)
		assert.Equal(t, userID, tctx.UserID)
		require.NotNil(t, tctx.BranchID)
		assert.Equal(t, branchID, *tctx.BranchID)
		assert.False(t, tctx.IsSuperAdmin())
	})

	t.Run("super admin without branch", func(t *testing.T) {
		claims := &Claims{UserID: userID.String(), SuperAdmin: true}
		tctx, err := claims.ToTenantContext()
		require.NoError(t, err)
		assert.True(t, tctx.IsSuperAdmin())
		assert.Nil(t, tctx.BranchID)
	})

	t.Run("invalid user id", func(t *testing.T) {
		claims := &Claims{UserID: "not-a-uuid"}
		_, err := claims.ToTenantContext()
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("invalid branch id invalidates the claims", func(t *testing.T) {
		claims := &Claims{UserID: userID.String(), BranchID: "not-a-uuid"}
		_, err := claims.ToTenantContext()
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}
