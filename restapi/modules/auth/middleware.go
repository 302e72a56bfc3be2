package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// principalKey is the fiber.Locals key holding the authenticated principal
const principalKey = "principal"

// RequireAuth middleware validates the bearer token and stores the principal
func RequireAuth(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := tokens.ValidateJWT(strings.TrimSpace(token))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		principal, err := claims.Principal()
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// RequireAllowedPrincipal middleware rejects principals outside the allow-list
func RequireAllowedPrincipal(allow *AllowList) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !allow.IsAuthorized(principal) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": DeniedMessage,
			})
		}

		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequireAuth
func PrincipalFrom(c *fiber.Ctx) (int64, bool) {
	principal, ok := c.Locals(principalKey).(int64)
	return principal, ok
}
