package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// RequireAuthenticated rejects anonymous actors.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ActorFromContext(c).IsAnonymous() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
