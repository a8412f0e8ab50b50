package auth

import (
	"strings"

	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxUserNameKey = "user_name"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxUserNameKey, claims.Name)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role unavailable")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you are not allowed to do this")
	}
}

// CurrentUser returns the authenticated user's id and name. Both are zero
// values on unauthenticated routes.
func CurrentUser(c *fiber.Ctx) (uint, string) {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	name, _ := c.Locals(CtxUserNameKey).(string)
	return id, name
}

// CurrentUserID is CurrentUser as a nullable foreign key.
func CurrentUserID(c *fiber.Ctx) *uint {
	id, _ := CurrentUser(c)
	if id == 0 {
		return nil
	}
	return &id
}
