package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
)

// Public messages for gateway failures. Transport details stay in the logs.
const (
	msgGatewayUnavailable = "Não foi possível comunicar com o gateway de pagamento. Tente novamente."
	msgGatewayTimeout     = "O gateway de pagamento não respondeu a tempo. Tente novamente."
	msgPersistFailed      = "Erro ao salvar a assinatura. Nossa equipe foi notificada."
)

// SubscriptionController exposes the subscription lifecycle.
type SubscriptionController struct {
	billing *billing.Service
	log     *zap.Logger
}

func NewSubscriptionController(svc *billing.Service, log *zap.Logger) *SubscriptionController {
	return &SubscriptionController{billing: svc, log: log}
}

// HandleCreate is the public self-service signup.
func (sc *SubscriptionController) HandleCreate(c *fiber.Ctx) error {
	var req billing.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}

	res, err := sc.billing.Subscribe(c.UserContext(), req)
	if err != nil {
		return sc.subscribeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (sc *SubscriptionController) subscribeError(c *fiber.Ctx, err error) error {
	var (
		verr    *billing.ValidationError
		reqErr  *gateway.RequestError
		trErr   *gateway.TransportError
		persist *billing.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		return validationError(c, verr.First(), verr.Fields)
	case errors.As(err, &reqErr):
		return jsonError(c, fiber.StatusBadRequest, codeGatewayRejected, reqErr.Message)
	case errors.As(err, &trErr) && trErr.Timeout:
		return jsonError(c, fiber.StatusGatewayTimeout, codeGatewayTimeout, msgGatewayTimeout)
	case errors.As(err, &trErr):
		return jsonError(c, fiber.StatusBadGateway, codeGatewayError, msgGatewayUnavailable)
	case errors.As(err, &persist):
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, msgPersistFailed)
	default:
		sc.log.Error("Subscribe failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao criar assinatura")
	}
}

// HandleCancel cancels a subscription at the gateway and locally.
func (sc *SubscriptionController) HandleCancel(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Assinatura não encontrada")
	}

	err := sc.billing.Cancel(c.UserContext(), id)
	var (
		reqErr *gateway.RequestError
		trErr  *gateway.TransportError
	)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Assinatura cancelada com sucesso"})
	case errors.Is(err, billing.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Assinatura não encontrada")
	case errors.Is(err, billing.ErrAlreadyCanceled):
		return jsonError(c, fiber.StatusConflict, codeConflict, "Assinatura já está cancelada")
	case errors.As(err, &reqErr):
		// operators see the gateway's own reason
		return jsonError(c, fiber.StatusInternalServerError, codeGatewayRejected, reqErr.Message)
	case errors.As(err, &trErr) && trErr.Timeout:
		return jsonError(c, fiber.StatusInternalServerError, codeGatewayTimeout, msgGatewayTimeout)
	case errors.As(err, &trErr):
		return jsonError(c, fiber.StatusInternalServerError, codeGatewayError, msgGatewayUnavailable)
	default:
		sc.log.Error("Cancel failed", zap.Uint("subscription_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao cancelar assinatura")
	}
}

func (sc *SubscriptionController) HandleList(c *fiber.Ctx) error {
	subs, err := sc.billing.ListSubscriptions(c.UserContext())
	if err != nil {
		sc.log.Error("List subscriptions failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar assinaturas")
	}
	return c.JSON(subs)
}

// HandleSync reconciles one subscription with the gateway.
func (sc *SubscriptionController) HandleSync(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Assinatura não encontrada")
	}

	res, err := sc.billing.SyncSubscription(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "Assinatura não encontrada")
		}
		if res != nil {
			return c.Status(fiber.StatusBadGateway).JSON(res)
		}
		sc.log.Error("Sync failed", zap.Uint("subscription_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao sincronizar assinatura")
	}
	return c.JSON(res)
}

// HandleReconcile reconciles every ACTIVE subscription.
func (sc *SubscriptionController) HandleReconcile(c *fiber.Ctx) error {
	report, err := sc.billing.Reconcile(c.UserContext())
	if err != nil {
		sc.log.Error("Reconcile failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao reconciliar assinaturas")
	}
	return c.JSON(report)
}
