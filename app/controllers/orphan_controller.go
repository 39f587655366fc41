package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
)

// OrphanController lists and resolves gateway entities without a local row.
type OrphanController struct {
	billing *billing.Service
	log     *zap.Logger
}

func NewOrphanController(svc *billing.Service, log *zap.Logger) *OrphanController {
	return &OrphanController{billing: svc, log: log}
}

func (oc *OrphanController) HandleList(c *fiber.Ctx) error {
	orphans, err := oc.billing.ListOrphans(c.UserContext())
	if err != nil {
		oc.log.Error("List orphans failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar pendências")
	}
	return c.JSON(orphans)
}

func (oc *OrphanController) HandleResolve(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, codeNotFound, "Pendência não encontrada")
	}
	if err := oc.billing.ResolveOrphan(c.UserContext(), id); err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, codeNotFound, "Pendência não encontrada")
		}
		oc.log.Error("Resolve orphan failed", zap.Uint("orphan_id", id), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao resolver pendência")
	}
	return c.JSON(fiber.Map{"message": "Pendência resolvida"})
}
