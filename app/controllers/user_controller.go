package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/usercontext"
)

type createUserRequest struct {
	Name     string      `json:"name" form:"name"`
	Email    string      `json:"email" form:"email"`
	Password string      `json:"password" form:"password"`
	Role     models.Role `json:"role" form:"role"`
}

// UserController manages back office operator accounts.
type UserController struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserController(users repository.UserRepository, log *zap.Logger) *UserController {
	return &UserController{users: users, log: log}
}

func (uc *UserController) HandleList(c *fiber.Ctx) error {
	users, err := uc.users.List(c.UserContext())
	if err != nil {
		uc.log.Error("List users failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar usuários")
	}
	return c.JSON(users)
}

func (uc *UserController) HandleCreate(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}
	if len(req.Password) < 6 {
		return validationError(c, "A senha deve ter pelo menos 6 caracteres", map[string]string{"password": "min"})
	}

	user, err := models.NewUser(strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password, req.Role)
	if err != nil {
		return validationError(c, "Dados do usuário inválidos", modelFields(err))
	}
	if err := uc.users.Create(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return jsonError(c, fiber.StatusConflict, codeConflict, "Email já cadastrado")
		}
		uc.log.Error("Create user failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao criar usuário")
	}

	uc.log.Info("Operator created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleDelete removes an operator. The current operator cannot delete itself.
func (uc *UserController) HandleDelete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Usuário não encontrado")
	}
	if id == usercontext.GetUserID(c) {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Você não pode deletar seu próprio usuário")
	}

	if err := uc.users.Delete(c.UserContext(), id); err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "Usuário não encontrado")
		}
		uc.log.Error("Delete user failed", zap.Uint("user_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao deletar usuário")
	}
	return c.JSON(fiber.Map{"message": "Usuário deletado com sucesso"})
}
