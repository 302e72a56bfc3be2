// Package auth provides authentication and authorization utilities.
//
//revive:disable-next-line:var-naming
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is set on every token this service generates
const Issuer = "media-provisioner"

// ErrNoSecret is returned when bearer auth is used without JWT_SECRET
var ErrNoSecret = errors.New("jwt secret is not configured")

// ============================================================================
// JWT TOKEN MANAGEMENT
// ============================================================================

// Claims represents JWT claims; the subject carries the principal id
type Claims struct {
	jwt.RegisteredClaims
}

// Principal returns the principal id from the token subject
func (c *Claims) Principal() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject '%s' is not a principal id", c.Subject)
	}
	return id, nil
}

// Tokens signs and validates HS256 tokens with one shared secret
type Tokens struct {
	secret []byte
}

// NewTokens creates a token helper; an empty secret disables validation
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

// GenerateJWT generates a token for a principal
func (t *Tokens) GenerateJWT(principal int64, ttl time.Duration) (string, error) {
	if !t.Enabled() {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
			Subject:   strconv.FormatInt(principal, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateJWT validates a token and returns its claims
func (t *Tokens) ValidateJWT(tokenString string) (*Claims, error) {
	if !t.Enabled() {
		return nil, ErrNoSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
