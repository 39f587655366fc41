package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/repository"
	sess "github.com/ManuelReschke/SubDesk/internal/pkg/session"
	"github.com/ManuelReschke/SubDesk/internal/pkg/usercontext"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthController handles operator login sessions
type AuthController struct {
	users repository.UserRepository
	store *session.Store
	log   *zap.Logger
}

func NewAuthController(users repository.UserRepository, store *session.Store, log *zap.Logger) *AuthController {
	return &AuthController{users: users, store: store, log: log}
}

// HandleLogin verifies email and password and binds the user to the session.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Erro ao fazer login")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "Email e senha são obrigatórios")
	}

	// do not tell which part was wrong
	user, err := ac.users.GetByEmail(c.UserContext(), email)
	if err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Email ou senha inválidos")
		}
		ac.log.Error("Login lookup failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao fazer login")
	}
	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Email ou senha inválidos")
	}

	if err := sess.Login(ac.store, c, sess.KeyUserID, user.ID); err != nil {
		ac.log.Error("Failed to store session", zap.Uint("user_id", user.ID), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao fazer login")
	}

	ac.log.Info("Operator logged in", zap.Uint("user_id", user.ID))
	return c.JSON(fiber.Map{"user": user})
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := sess.Logout(ac.store, c); err != nil {
		ac.log.Error("Failed to destroy session", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao fazer logout")
	}
	return c.JSON(fiber.Map{"message": "Logout realizado com sucesso"})
}

// HandleMe returns the logged-in operator.
func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": usercontext.GetUserContext(c)})
}
