package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
	sess "github.com/ManuelReschke/SubDesk/internal/pkg/session"
	"github.com/ManuelReschke/SubDesk/internal/pkg/usercontext"
)

// CustomerPortalController is the self-service area of subscribers. Access
// exists only after an admin set a portal password.
type CustomerPortalController struct {
	customers repository.CustomerRepository
	billing   *billing.Service
	store     *session.Store
	log       *zap.Logger
}

func NewCustomerPortalController(customers repository.CustomerRepository, svc *billing.Service, store *session.Store, log *zap.Logger) *CustomerPortalController {
	return &CustomerPortalController{customers: customers, billing: svc, store: store, log: log}
}

func (pc *CustomerPortalController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Erro ao fazer login")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "Email e senha são obrigatórios")
	}

	customer, err := pc.customers.GetPortalAccountByEmail(c.UserContext(), email)
	if err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Email ou senha inválidos")
		}
		pc.log.Error("Customer login lookup failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao fazer login")
	}
	if !customer.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Email ou senha inválidos")
	}

	if err := sess.Login(pc.store, c, sess.KeyCustomerID, customer.ID); err != nil {
		pc.log.Error("Failed to store customer session", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao fazer login")
	}
	return c.JSON(fiber.Map{"customer": customer})
}

func (pc *CustomerPortalController) HandleLogout(c *fiber.Ctx) error {
	if err := sess.Logout(pc.store, c); err != nil {
		pc.log.Error("Failed to destroy customer session", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao fazer logout")
	}
	return c.JSON(fiber.Map{"message": "Logout realizado com sucesso"})
}

func (pc *CustomerPortalController) HandleMe(c *fiber.Ctx) error {
	customer, err := pc.customers.GetByID(c.UserContext(), usercontext.GetCustomerID(c))
	if err != nil {
		if repository.IsNotFound(err) {
			return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Não autorizado")
		}
		pc.log.Error("Customer lookup failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro na autenticação")
	}
	return c.JSON(fiber.Map{"customer": customer})
}

// HandleDashboard returns the customer with all subscriptions and the current one.
func (pc *CustomerPortalController) HandleDashboard(c *fiber.Ctx) error {
	dash, err := pc.billing.CustomerDashboard(c.UserContext(), usercontext.GetCustomerID(c))
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "Cliente não encontrado")
		}
		pc.log.Error("Customer dashboard failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao carregar painel")
	}
	return c.JSON(dash)
}
