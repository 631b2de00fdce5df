package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// Locals keys populated for authenticated requests.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
)

// TokenVerifier resolves a bearer token into the caller it identifies.
type TokenVerifier interface {
	Verify(token string) (service.Actor, error)
}

// JWTProtected rejects requests without a valid bearer token. The role is
// taken from the token claims as-is.
func JWTProtected(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authorization header missing", nil)
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid authorization header", nil)
		}

		token := strings.TrimSpace(authorization[len(bearer):])
		if token == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token", nil)
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token", nil)
		}

		c.Locals(LocalUserID, actor.ID)
		c.Locals(LocalUserRole, actor.Role)
		return c.Next()
	}
}

// ActorFromLocals returns the authenticated caller stored by JWTProtected.
func ActorFromLocals(c *fiber.Ctx) (service.Actor, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	if !ok || id == 0 {
		return service.Actor{}, false
	}
	role, _ := c.Locals(LocalUserRole).(string)
	return service.Actor{ID: id, Role: role}, true
}
