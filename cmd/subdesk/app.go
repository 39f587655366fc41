package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
	"github.com/ManuelReschke/SubDesk/internal/pkg/cache"
	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
	"github.com/ManuelReschke/SubDesk/internal/pkg/database"
	"github.com/ManuelReschke/SubDesk/internal/pkg/env"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/SubDesk/internal/pkg/icon"
	"github.com/ManuelReschke/SubDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/SubDesk/internal/pkg/router"
	"github.com/ManuelReschke/SubDesk/internal/pkg/seed"
	"github.com/ManuelReschke/SubDesk/internal/pkg/session"
)

// NewApplication wires every collaborator and returns the fiber app plus a
// cleanup func releasing connections.
func NewApplication(ctx context.Context, cfg config.Config, log *zap.Logger) (*fiber.App, func(), error) {
	db, err := database.SetupDatabase(cfg.DB, log)
	if err != nil {
		return nil, nil, err
	}
	repos := repository.NewRepositories(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gw, err := newGateway(cfg, m, log)
	if err != nil {
		return nil, nil, err
	}

	svc := billing.NewService(billing.Params{
		Customers:     repos.Customer,
		Subscriptions: repos.Subscription,
		Orphans:       repos.Orphan,
		Gateway:       gw,
		Log:           log.Named("billing"),
		Metrics:       m,
		Location:      cfg.Location(),
		Description:   cfg.Asaas.Description,
	})

	var responseCache *cache.Storage
	if store := cache.NewRedisStorage(cfg.Cache, cache.DatabaseCache); store != nil {
		responseCache = cache.New(store)
		log.Info("Connected to cache", zap.String("addr", cfg.Cache.Host+":"+cfg.Cache.Port))
	} else {
		log.Info("No cache server configured, using in-process cache")
		responseCache = cache.NewMemory()
	}
	closers := []func() error{responseCache.Close}
	sessionStorage := session.NewStorage(cfg.Cache, session.DatabaseSessions)
	limiterStorage := session.NewStorage(cfg.Cache, session.DatabaseLimiter)
	for _, s := range []fiber.Storage{sessionStorage, limiterStorage} {
		if s != nil {
			closers = append(closers, s.Close)
		}
	}

	iconStore, err := newIconStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SeedOnStart {
		if err := seed.All(ctx, repos, log.Named("seed")); err != nil {
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		Views:     html.New(cfg.ViewsDir, ".html"),
		BodyLimit: cfg.Uploads.MaxBytes + 1<<20,
	})

	app.Use(recover.New(), logger.New())

	// ignore and cache favicon
	faviconFile := filepath.Join(cfg.PublicDir, "assets", "icons", "favicon.ico")
	if _, err := os.Stat(faviconFile); err == nil {
		app.Use(favicon.New(favicon.Config{
			File:         faviconFile,
			URL:          "/favicon.ico",
			CacheControl: "public, max-age=604800",
		}))
	} else {
		app.Use(favicon.New())
	}

	app.Static("/assets", filepath.Join(cfg.PublicDir, "assets"), fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})
	if !cfg.S3.IconsEnabled {
		app.Static(cfg.Uploads.IconURLBase, cfg.Uploads.IconDir, fiber.Static{
			CacheDuration: 10 * time.Second,
			MaxAge:        604800,
		})
	}

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: filepath.Join(cfg.PublicDir, "docs", "v1", "openapi.yml"),
		Path:     "v1",
		Title:    cfg.AppName + " API",
	}))

	router.InstallRouter(app, router.Deps{
		Repos:          repos,
		Billing:        svc,
		Sessions:       session.NewStore(cfg.Sessions, sessionStorage),
		Cache:          responseCache,
		Icons:          icon.NewService(iconStore, int64(cfg.Uploads.MaxBytes), log.Named("icon")),
		Limiter:        cfg.Limiter,
		LimiterStorage: limiterStorage,
		Metrics:        cfg.Metrics,
		Gatherer:       reg,
		Ping:           func() error { return database.Ping(db) },
		Log:            log,
	})

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("Failed to close resource", zap.Error(err))
			}
		}
		closeDB(db, log)
	}
	return app, cleanup, nil
}

// newGateway returns the Asaas client. Development without an API key runs
// against the in-memory fake.
func newGateway(cfg config.Config, m *metrics.Metrics, log *zap.Logger) (gateway.Gateway, error) {
	if cfg.Asaas.APIKey == "" && env.IsDev() {
		log.Warn("ASAAS_API_KEY not set, using the in-memory billing gateway")
		return gateway.NewFake(), nil
	}
	client, err := gateway.NewAsaasClient(cfg.Asaas, m)
	if err != nil {
		return nil, fmt.Errorf("asaas client: %w", err)
	}
	return client, nil
}

func newIconStore(ctx context.Context, cfg config.Config) (icon.Store, error) {
	if cfg.S3.IconsEnabled {
		store, err := icon.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("icon s3 store: %w", err)
		}
		return store, nil
	}
	return &icon.LocalStore{Dir: cfg.Uploads.IconDir, URLBase: cfg.Uploads.IconURLBase}, nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
}
