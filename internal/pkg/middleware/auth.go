package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SubDesk/internal/pkg/authz"
	"github.com/ManuelReschke/SubDesk/internal/pkg/usercontext"
)

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": "Não autorizado",
	})
}

// RequirePermission ensures a logged-in operator session whose role grants p.
// Anonymous requests get JSON 401, other roles 403.
func RequirePermission(p authz.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !usercontext.IsLoggedIn(c) {
			return unauthorized(c)
		}
		if !authz.Can(usercontext.GetUserContext(c).Role, p) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "Acesso negado",
			})
		}
		return c.Next()
	}
}

// RequireCustomer ensures a logged-in customer portal session.
func RequireCustomer(c *fiber.Ctx) error {
	if !usercontext.GetCustomerContext(c).IsLoggedIn {
		return unauthorized(c)
	}
	return c.Next()
}
