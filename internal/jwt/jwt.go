// Package jwt reads display claims from the session token. The portal does
// not hold the backend's signing key, so nothing here is a proof of identity;
// it only decides what the navigation bar shows.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a JWT")

type Claims struct {
	Subject   string
	Name      string
	Email     string
	ExpiresAt time.Time // zero when the token carries no exp
}

// DisplayName picks the friendliest identifier available.
func (c *Claims) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return c.Email
	default:
		return c.Subject
	}
}

func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Peek decodes token without verifying its signature.
func Peek(token string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}

	claims := &Claims{
		Name:  firstString(mapClaims, "name", "fullname"),
		Email: firstString(mapClaims, "email", "steg_email"),
	}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
