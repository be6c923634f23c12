package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T) string {
	return signedToken(t, jwt.MapClaims{
		"sub": "user@prepcheck.io",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
}

func expiredToken(t *testing.T) string {
	return signedToken(t, jwt.MapClaims{
		"sub": "user@prepcheck.io",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
}

func TestTokenValid(t *testing.T) {
	now := time.Now()

	t.Run("fresh token", func(t *testing.T) {
		assert.True(t, TokenValid(validToken(t), now))
	})

	t.Run("expired token", func(t *testing.T) {
		assert.False(t, TokenValid(expiredToken(t), now))
	})

	t.Run("expiry exactly now", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": now.Unix()})
		assert.False(t, TokenValid(token, time.Unix(now.Unix(), 0)))
	})

	t.Run("missing expiry claim", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "user@prepcheck.io"})
		assert.False(t, TokenValid(token, now))
	})

	t.Run("wrong segment count", func(t *testing.T) {
		assert.False(t, TokenValid("", now))
		assert.False(t, TokenValid("justonepart", now))
		assert.False(t, TokenValid("two.parts", now))
		assert.False(t, TokenValid("a.b.c.d", now))
	})

	t.Run("garbage payload", func(t *testing.T) {
		assert.False(t, TokenValid("aGVhZGVy.bm90LWpzb24.c2ln", now))
	})
}
