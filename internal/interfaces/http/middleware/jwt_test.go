package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/branchcore/internal/domain/tenant"
	"github.com/erp/branchcore/internal/infrastructure/auth"
	"github.com/erp/branchcore/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService, *tenant.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-at-least-32-characters",
		Issuer:                 "branchcore-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
	})

	var captured tenant.Context
	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/protected", func(c *gin.Context) {
		tctx, ok := GetTenantContext(c)
		require.True(t, ok)
		captured = tctx
		c.Status(http.StatusOK)
	})
	return router, jwtService, &captured
}

func performRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(AuthHeaderKey, authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("valid token attaches the principal", func(t *testing.T) {
		router, jwtService, captured := newAuthTestRouter(t)
		userID := uuid.New()
		branchID := uuid.New()

		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   userID,
			Username: "alice",
			BranchID: &branchID,
		})
		require.NoError(t, err)

		w := performRequest(router, "/protected", BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, captured.UserID)
		require.NotNil(t, captured.BranchID)
		assert.Equal(t, branchID, *captured.BranchID)
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		router, _, _ := newAuthTestRouter(t)
		w := performRequest(router, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		router, _, _ := newAuthTestRouter(t)
		w := performRequest(router, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, w))
	})

	t.Run("malformed header", func(t *testing.T) {
		router, _, _ := newAuthTestRouter(t)
		w := performRequest(router, "/protected", "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, w))
	})

	t.Run("refresh token is rejected on access paths", func(t *testing.T) {
		router, jwtService, _ := newAuthTestRouter(t)
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New()})
		require.NoError(t, err)

		w := performRequest(router, "/protected", BearerPrefix+pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN_TYPE", errorCode(t, w))
	})

	t.Run("expired token", func(t *testing.T) {
		router, _, _ := newAuthTestRouter(t)
		expiredService := auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-at-least-32-characters",
			Issuer:                 "branchcore-test",
			AccessTokenExpiration:  -time.Minute,
			RefreshTokenExpiration: time.Hour,
		})
		pair, err := expiredService.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New()})
		require.NoError(t, err)

		w := performRequest(router, "/protected", BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, w))
	})
}

func TestGetTenantContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetTenantContext(c)
	assert.False(t, ok, "unauthenticated requests have no principal")

	tctx := tenant.NewContext(uuid.New(), uuid.New())
	c.Set(TenantContextKey, tctx)

	got, ok := GetTenantContext(c)
	require.True(t, ok)
	assert.Equal(t, tctx.UserID, got.UserID)
}
