package controllers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/cache"
	"github.com/ManuelReschke/SubDesk/internal/pkg/icon"
)

const publicSettingsTTL = 5 * time.Minute

type scriptsRequest struct {
	FacebookPixel   string `json:"facebookPixel" form:"facebookPixel"`
	GoogleAnalytics string `json:"googleAnalytics" form:"googleAnalytics"`
}

// SettingController manages the site settings singleton.
type SettingController struct {
	settings repository.SettingRepository
	icons    *icon.Service
	cache    cache.Cache
	log      *zap.Logger
}

func NewSettingController(settings repository.SettingRepository, icons *icon.Service, c cache.Cache, log *zap.Logger) *SettingController {
	return &SettingController{settings: settings, icons: icons, cache: c, log: log}
}

// HandleGet serves the public settings, cached until the next save.
func (sc *SettingController) HandleGet(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if sc.cache != nil {
		if raw, err := sc.cache.Get(ctx, cache.KeyPublicSettings); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(raw)
		} else if !errors.Is(err, cache.ErrMiss) {
			sc.log.Warn("Settings cache read failed", zap.Error(err))
		}
	}

	setting, err := sc.settings.Get(ctx)
	if err != nil {
		sc.log.Error("Failed to load settings", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar configurações")
	}
	raw, err := json.Marshal(setting)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao buscar configurações")
	}
	if sc.cache != nil {
		if err := sc.cache.Set(ctx, cache.KeyPublicSettings, raw, publicSettingsTTL); err != nil {
			sc.log.Warn("Settings cache write failed", zap.Error(err))
		}
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// HandleSave accepts multipart siteName, whatsapp and an optional favicon file.
func (sc *SettingController) HandleSave(c *fiber.Ctx) error {
	ctx := c.UserContext()
	setting, err := sc.settings.Get(ctx)
	if err != nil {
		sc.log.Error("Failed to load settings", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao salvar configurações")
	}

	setting.SiteName = strings.TrimSpace(c.FormValue("siteName", setting.SiteName))
	setting.Whatsapp = models.OptionalString(strings.TrimSpace(c.FormValue("whatsapp")))
	if err := setting.Validate(); err != nil {
		return validationError(c, "Configurações inválidas", modelFields(err))
	}

	if file, err := c.FormFile("favicon"); err == nil {
		f, err := file.Open()
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Erro ao ler o arquivo")
		}
		url, err := sc.icons.Upload(ctx, file.Filename, f)
		_ = f.Close()
		switch {
		case errors.Is(err, icon.ErrUnsupportedType), errors.Is(err, icon.ErrScriptable),
			errors.Is(err, icon.ErrTooLarge), errors.Is(err, icon.ErrEmpty):
			return validationError(c, err.Error(), map[string]string{"favicon": "invalid"})
		case err != nil:
			sc.log.Error("Favicon upload failed", zap.Error(err))
			return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao salvar o ícone")
		}
		setting.FaviconPath = &url
	}

	if err := sc.settings.Save(ctx, setting); err != nil {
		sc.log.Error("Failed to save settings", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao salvar configurações")
	}
	sc.invalidate(c)
	return c.JSON(setting)
}

// HandleSaveScripts stores the tracking tags. Empty values clear them.
func (sc *SettingController) HandleSaveScripts(c *fiber.Ctx) error {
	var req scriptsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, codeBadRequest, "Dados inválidos")
	}
	check := models.Setting{
		SiteName:        models.DefaultSiteName,
		FacebookPixel:   models.OptionalString(strings.TrimSpace(req.FacebookPixel)),
		GoogleAnalytics: models.OptionalString(strings.TrimSpace(req.GoogleAnalytics)),
	}
	if err := check.Validate(); err != nil {
		return validationError(c, "Scripts inválidos", modelFields(err))
	}

	setting, err := sc.settings.SaveScripts(c.UserContext(), check.FacebookPixel, check.GoogleAnalytics)
	if err != nil {
		sc.log.Error("Failed to save scripts", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, codeInternal, "Erro ao salvar scripts")
	}
	sc.invalidate(c)
	return c.JSON(setting)
}

func (sc *SettingController) invalidate(c *fiber.Ctx) {
	if sc.cache == nil {
		return
	}
	if err := sc.cache.Delete(c.UserContext(), cache.KeyPublicSettings); err != nil {
		sc.log.Warn("Settings cache invalidation failed", zap.Error(err))
	}
}
