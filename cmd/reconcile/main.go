package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/billing"
	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
	"github.com/ManuelReschke/SubDesk/internal/pkg/database"
	"github.com/ManuelReschke/SubDesk/internal/pkg/env"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/SubDesk/internal/pkg/logger"
)

// reconcile checks local ACTIVE subscriptions against Asaas. With an id
// argument only that subscription is synced.
func main() {
	env.SetupEnvFile()
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, env.IsDev())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.SetupDatabase(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect database", zap.Error(err))
	}
	repos := repository.NewRepositories(db)

	// metrics are not exported from a one-shot run
	client, err := gateway.NewAsaasClient(cfg.Asaas, nil)
	if err != nil {
		log.Fatal("Failed to create gateway client", zap.Error(err))
	}

	svc := billing.NewService(billing.Params{
		Customers:     repos.Customer,
		Subscriptions: repos.Subscription,
		Orphans:       repos.Orphan,
		Gateway:       client,
		Log:           log.Named("billing"),
		Location:      cfg.Location(),
		Description:   cfg.Asaas.Description,
	})

	if len(os.Args) > 1 {
		id, err := strconv.ParseUint(os.Args[1], 10, 64)
		if err != nil {
			log.Fatal("Invalid subscription id", zap.String("arg", os.Args[1]))
		}
		res, err := svc.SyncSubscription(ctx, uint(id))
		if err != nil {
			log.Fatal("Sync failed", zap.Uint64("subscription_id", id), zap.Error(err))
		}
		log.Info("Subscription synced", zap.Uint64("subscription_id", id), zap.String("outcome", res.Outcome))
		return
	}

	report, err := svc.Reconcile(ctx)
	if err != nil {
		log.Fatal("Reconcile aborted", zap.Error(err))
	}
	if report.Failed > 0 {
		os.Exit(2)
	}
}
