package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/vamosjogar/sports-meetup-api/internal/config"
	"github.com/vamosjogar/sports-meetup-api/internal/utils"
)

const testSecret = "unit-test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/activities/minhas", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, seen
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "Ana", 15)
	require.NoError(t, err)

	rec, seen := runJWT(t, "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.EqualValues(t, 42, seen.Get("user_id"))
	require.Equal(t, "Ana", seen.Get("nome"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, seen := runJWT(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, "Ana", 15)
	require.NoError(t, err)

	rec, seen := runJWT(t, "Bearer "+tok.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": uint64(42),
		"exp": time.Now().UTC().Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec, seen := runJWT(t, "Bearer "+signed)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestJWTAuthRejectsUnsignedAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uint64(42)}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec, seen := runJWT(t, "Bearer "+unsigned)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// With no Redis client both middlewares must be transparent.
	h := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)(
		NewRedisCache(config.CacheConfig{Enabled: true}, nil)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-Cache"))
}
