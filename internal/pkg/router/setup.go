package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
	"github.com/ManuelReschke/SubDesk/internal/pkg/cache"
	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
	"github.com/ManuelReschke/SubDesk/internal/pkg/icon"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps are the collaborators shared by all routers.
type Deps struct {
	Repos          *repository.Repositories
	Billing        *billing.Service
	Sessions       *session.Store
	Cache          cache.Cache
	Icons          *icon.Service
	Limiter        config.LimiterConfig
	LimiterStorage fiber.Storage
	Metrics        config.MetricsConfig
	Gatherer       prometheus.Gatherer
	Ping           func() error
	Log            *zap.Logger
}

func InstallRouter(app *fiber.App, deps Deps) {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	// HttpRouter installs the session middlewares the API routes depend on.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
