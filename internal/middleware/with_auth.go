package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// Auth role constants used by WithAuth helper. AuthRoleAdmin covers every
// staff role.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = RoleAdmin
	AuthRoleStudent = RoleStudent
)

// AuthOptions configures the WithAuth helper. A signed-in user is always
// required unless Role is AuthRoleAny and AllowAnonymous is set.
type AuthOptions struct {
	Role           string
	AllowAnonymous bool
}

// WithAuth wraps a handler with authentication and role guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}
	anonymous := opts.AllowAnonymous && role == AuthRoleAny

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			if anonymous {
				return handler(c)
			}
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if role == AuthRoleAny {
			return handler(c)
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		allowed := currentRole == role
		if role == AuthRoleAdmin {
			allowed = isStaffRole(currentRole)
		}
		if !allowed {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}

func isStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleCounselor
}
