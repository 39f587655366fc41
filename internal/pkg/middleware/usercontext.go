package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/repository"
	sess "github.com/ManuelReschke/SubDesk/internal/pkg/session"
	"github.com/ManuelReschke/SubDesk/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the operator context for every request.
// A session pointing to a deleted user counts as anonymous.
func UserContextMiddleware(store *session.Store, users repository.UserRepository, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{})

		userID := sess.GetID(store, c, sess.KeyUserID)
		if userID == 0 {
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if !repository.IsNotFound(err) {
				log.Error("Failed to resolve session user", zap.Uint("user_id", userID), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "internal_server_error",
					"message": "Erro na autenticação",
				})
			}
			return c.Next()
		}

		c.Locals(usercontext.KeyUserContext, usercontext.FromUser(user))
		return c.Next()
	}
}

// CustomerContextMiddleware sets up the customer portal context.
func CustomerContextMiddleware(store *session.Store, customers repository.CustomerRepository, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyCustomerContext, usercontext.CustomerContext{})

		customerID := sess.GetID(store, c, sess.KeyCustomerID)
		if customerID == 0 {
			return c.Next()
		}

		customer, err := customers.GetByID(c.UserContext(), customerID)
		if err != nil {
			if !repository.IsNotFound(err) {
				log.Error("Failed to resolve session customer", zap.Uint("customer_id", customerID), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "internal_server_error",
					"message": "Erro na autenticação",
				})
			}
			return c.Next()
		}
		// revoked portal access ends existing sessions
		if !customer.HasPortalAccess() {
			return c.Next()
		}

		c.Locals(usercontext.KeyCustomerContext, usercontext.CustomerContext{CustomerID: customer.ID, IsLoggedIn: true})
		return c.Next()
	}
}
