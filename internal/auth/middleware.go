package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/access"
	"pos-backend/internal/apperr"
)

// Middleware authenticates the bearer access token when one is present and
// stores the principal on the request. Requests without an Authorization
// header continue as anonymous; the policy decides what they may do.
func Middleware(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return apperr.Unauthenticated("Authorization header must be 'Bearer <token>'.")
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]), TokenAccess)
		if err != nil {
			return apperr.Unauthenticated("Given token not valid for any token type.")
		}

		access.SetPrincipal(c, claims.Principal())
		return c.Next()
	}
}
