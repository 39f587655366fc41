package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
)

// CustomerController serves the admin customer views.
type CustomerController struct {
	billing *billing.Service
	log     *zap.Logger
}

func NewCustomerController(svc *billing.Service, log *zap.Logger) *CustomerController {
	return &CustomerController{billing: svc, log: log}
}

func (cc *CustomerController) HandleList(c *fiber.Ctx) error {
	list, err := cc.billing.ListCustomers(c.UserContext())
	if err != nil {
		cc.log.Error("List customers failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar clientes")
	}
	return c.JSON(list)
}

func (cc *CustomerController) HandleSummary(c *fiber.Ctx) error {
	sum, err := cc.billing.Summary(c.UserContext())
	if err != nil {
		cc.log.Error("Customer summary failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar resumo")
	}
	return c.JSON(sum)
}

// HandleUpdateAccount sets the portal email and password of a customer.
func (cc *CustomerController) HandleUpdateAccount(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Cliente não encontrado")
	}
	var upd billing.AccountUpdate
	if err := c.BodyParser(&upd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}

	customer, err := cc.billing.UpdateCustomerAccount(c.UserContext(), id, upd)
	var verr *billing.ValidationError
	switch {
	case err == nil:
		return c.JSON(customer)
	case errors.As(err, &verr):
		return validationError(c, verr.First(), verr.Fields)
	case errors.Is(err, billing.ErrInvalidAccount):
		return jsonError(c, fiber.StatusBadRequest, codeValidation, "Informe email ou senha")
	case errors.Is(err, billing.ErrDuplicateAccount):
		return jsonError(c, fiber.StatusConflict, codeConflict, "Email já utilizado por outro cliente")
	case errors.Is(err, billing.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Cliente não encontrado")
	default:
		cc.log.Error("Customer account update failed", zap.Uint("customer_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao atualizar cliente")
	}
}
