package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SubDesk/app/models"
)

// UserContext represents the operator behind a request
type UserContext struct {
	UserID     uint        `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	IsLoggedIn bool        `json:"-"`
}

// FromUser builds a logged-in context.
func FromUser(u *models.User) UserContext {
	return UserContext{
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsLoggedIn: true,
	}
}

// GetUserContext retrieves the user context from fiber context
// Returns an anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// CustomerContext is the customer portal login of a request.
type CustomerContext struct {
	CustomerID uint
	IsLoggedIn bool
}

func GetCustomerContext(c *fiber.Ctx) CustomerContext {
	if ctx, ok := c.Locals(KeyCustomerContext).(CustomerContext); ok {
		return ctx
	}
	return CustomerContext{}
}

// GetCustomerID returns the logged-in portal customer, or 0
func GetCustomerID(c *fiber.Ctx) uint {
	return GetCustomerContext(c).CustomerID
}
