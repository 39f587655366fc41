package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/SubDesk/app/controllers"
	"github.com/ManuelReschke/SubDesk/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Deps
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	d := h.deps

	// resolve operator and customer sessions for every request
	app.Use(middleware.UserContextMiddleware(d.Sessions, d.Repos.User, d.Log))
	app.Use(middleware.CustomerContextMiddleware(d.Sessions, d.Repos.Customer, d.Log))

	mainController := controllers.NewMainController(d.Repos, d.Ping, d.Cache, d.Log)
	app.Get("/", mainController.HandleLanding)
	app.Get("/healthz", mainController.HandleHealth)

	ops := opsAuth(d)
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", ops, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/monitor", ops, monitor.New(monitor.Config{Title: "SubDesk Monitor"}))
}

func NewHttpRouter(deps Deps) *HttpRouter {
	return &HttpRouter{deps: deps}
}

// opsAuth guards the operational endpoints. Without a configured password
// they are closed.
func opsAuth(d Deps) fiber.Handler {
	if d.Metrics.Password == "" {
		return func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNotFound)
		}
	}
	return basicauth.New(basicauth.Config{
		Users: map[string]string{
			d.Metrics.Username: d.Metrics.Password,
		},
	})
}
