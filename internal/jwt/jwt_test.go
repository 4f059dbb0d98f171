package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestPeek(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := sign(t, jwt.MapClaims{
		"sub":        "42",
		"fullname":   "Jane Doe",
		"steg_email": "jane@steg.com.tn",
		"exp":        exp.Unix(),
	})

	claims, err := Peek(token)

	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "jane@steg.com.tn", claims.Email)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Second)))
	assert.Equal(t, "Jane Doe", claims.DisplayName())
}

func TestPeek_DisplayNameFallbacks(t *testing.T) {
	claims, err := Peek(sign(t, jwt.MapClaims{"email": "a@b.tn", "sub": "7"}))
	require.NoError(t, err)
	assert.Equal(t, "a@b.tn", claims.DisplayName())
	assert.False(t, claims.Expired(time.Now()), "no exp never expires")

	claims, err = Peek(sign(t, jwt.MapClaims{"sub": "7"}))
	require.NoError(t, err)
	assert.Equal(t, "7", claims.DisplayName())
}

func TestPeek_OpaqueToken(t *testing.T) {
	for _, token := range []string{"tok1", "", "a.b.c"} {
		_, err := Peek(token)
		assert.ErrorIs(t, err, ErrNotJWT, token)
	}
}
