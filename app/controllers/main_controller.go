package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/cache"
)

// MainController renders the landing page and answers health checks.
type MainController struct {
	repos *repository.Repositories
	ping  func() error
	cache cache.Cache
	log   *zap.Logger
}

func NewMainController(repos *repository.Repositories, ping func() error, c cache.Cache, log *zap.Logger) *MainController {
	return &MainController{repos: repos, ping: ping, cache: c, log: log}
}

// HandleLanding renders views/index.html with the site settings, the hero
// video and the FAQs.
func (mc *MainController) HandleLanding(c *fiber.Ctx) error {
	ctx := c.UserContext()
	setting, err := mc.repos.Setting.Get(ctx)
	if err != nil {
		mc.log.Error("Landing settings failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	faqs, err := mc.repos.Faq.List(ctx)
	if err != nil {
		mc.log.Error("Landing faqs failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	var heroEmbed string
	hero, err := mc.repos.Video.GetHero(ctx)
	switch {
	case err == nil:
		heroEmbed = hero.EmbedURL()
	case !repository.IsNotFound(err):
		mc.log.Warn("Landing hero video failed", zap.Error(err))
	}

	return c.Render("index", fiber.Map{
		"SiteName":        setting.SiteName,
		"Favicon":         models.StringOrEmpty(setting.FaviconPath),
		"Whatsapp":        models.StringOrEmpty(setting.Whatsapp),
		"FacebookPixel":   models.StringOrEmpty(setting.FacebookPixel),
		"GoogleAnalytics": models.StringOrEmpty(setting.GoogleAnalytics),
		"Hero":            hero,
		"HeroEmbedURL":    heroEmbed,
		"Faqs":            faqs,
	})
}

func (mc *MainController) HandleHealth(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok", "database": "up", "cache": "up"}
	code := fiber.StatusOK
	if mc.ping != nil {
		if err := mc.ping(); err != nil {
			mc.log.Warn("Health check failed", zap.String("component", "database"), zap.Error(err))
			body["database"] = "down"
			code = fiber.StatusServiceUnavailable
		}
	}
	if mc.cache != nil {
		if err := mc.cache.Ping(c.UserContext()); err != nil {
			mc.log.Warn("Health check failed", zap.String("component", "cache"), zap.Error(err))
			body["cache"] = "down"
			code = fiber.StatusServiceUnavailable
		}
	}
	if code != fiber.StatusOK {
		body["status"] = "unavailable"
	}
	return c.Status(code).JSON(body)
}
