package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// Auth guards used by WithAuth.
const (
	AuthRoleAny     = "any"
	AuthRoleStudent = models.RoleStudent
	AuthRoleTeacher = models.RoleTeacher
	AuthRoleAdmin   = models.RoleAdmin
	// AuthRoleStaff admits teachers and administrators.
	AuthRoleStaff = "staff"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
}

// WithAuth wraps a single handler with an authentication and role guard. It
// expects JWTProtected to have run earlier in the chain.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := models.NormalizeRole(opts.Role)
	if role == "" {
		role = AuthRoleAny
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromLocals(c)
		if !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		current := models.NormalizeRole(actor.Role)
		switch role {
		case AuthRoleAny:
		case AuthRoleStaff:
			if current != models.RoleTeacher && current != models.RoleAdmin {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		default:
			if current != role {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		}

		return handler(c)
	}
}
