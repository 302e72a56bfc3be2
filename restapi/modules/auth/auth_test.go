package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAllowList(t *testing.T) {
	allow, err := ParseAllowList("111, 222;333", zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 3, allow.Len())
	assert.True(t, allow.IsAuthorized(222))
	assert.False(t, allow.IsAuthorized(999))
}

func TestAllowList_EmptyAuthorizesNobody(t *testing.T) {
	allow := NewAllowList(nil, nil)
	assert.False(t, allow.IsAuthorized(0))

	var missing *AllowList
	assert.False(t, missing.IsAuthorized(1))
}

func TestParseAllowList_ReportsEveryBadEntry(t *testing.T) {
	_, err := ParseAllowList("1,abc,2,x9", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'abc'")
	assert.Contains(t, err.Error(), "'x9'")
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret")
	signed, err := tokens.GenerateJWT(42, time.Hour)
	require.NoError(t, err)

	claims, err := tokens.ValidateJWT(signed)
	require.NoError(t, err)
	principal, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret")

	expired, err := tokens.GenerateJWT(42, -time.Minute)
	require.NoError(t, err)
	_, err = tokens.ValidateJWT(expired)
	assert.Error(t, err)

	other, err := NewTokens("other").GenerateJWT(42, time.Hour)
	require.NoError(t, err)
	_, err = tokens.ValidateJWT(other)
	assert.Error(t, err)

	_, err = NewTokens("").ValidateJWT(other)
	assert.ErrorIs(t, err, ErrNoSecret)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "42"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.ValidateJWT(unsigned)
	assert.Error(t, err)
}

func TestClaims_NonNumericSubject(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}
	_, err := c.Principal()
	assert.Error(t, err)
}

func newProtectedApp(t *testing.T, tokens *Tokens, allow *AllowList) *fiber.App {
	app := fiber.New()
	app.Get("/protected", RequireAuth(tokens), RequireAllowedPrincipal(allow), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFrom(c)
		return c.JSON(fiber.Map{"principal": principal})
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("secret")
	app := newProtectedApp(t, tokens, NewAllowList([]int64{42}, zaptest.NewLogger(t)))

	allowed, err := tokens.GenerateJWT(42, time.Hour)
	require.NoError(t, err)
	denied, err := tokens.GenerateJWT(7, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"outside allow-list", "Bearer " + denied, http.StatusForbidden},
		{"allowed", "Bearer " + allowed, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
