package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims is what the client can learn from an access token without the signing key
type Claims struct {
	UserID    string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseClaims reads the claims of a JWT access token without verifying its signature.
// Verification is the server's job; the client only needs the expiry.
func ParseClaims(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, ErrOpaqueToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrOpaqueToken
	}

	claims := &Claims{}
	switch id := mc["user_id"].(type) {
	case string:
		claims.UserID = id
	case float64:
		claims.UserID = strconv.FormatInt(int64(id), 10)
	}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

// Expired reports whether the access token is a JWT whose exp has passed.
// Opaque tokens and JWTs without exp never expire on the client side.
func (c *Credentials) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	claims, err := ParseClaims(c.AccessToken)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(claims.ExpiresAt)
}
