package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

const (
	userIDLocal   = "user_id"
	userRoleLocal = "user_role"
)

// CurrentUserFunc reports the signed-in user.
type CurrentUserFunc func() (models.User, error)

// Session exposes the signed-in user, if any, to later handlers.
func Session(current CurrentUserFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, err := current(); err == nil {
			c.Locals(userIDLocal, user.ID)
			c.Locals(userRoleLocal, user.Role)
		}
		return c.Next()
	}
}

// RequireRole rejects requests without a signed-in user or, when roles are
// given, whose user holds none of them.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals(userIDLocal).(string); !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "sign in first")
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		role, _ := c.Locals(userRoleLocal).(models.Role)
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
