package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
	"github.com/ManuelReschke/SubDesk/internal/pkg/env"
	"github.com/ManuelReschke/SubDesk/internal/pkg/logger"
)

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

	app, cleanup, err := NewApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build application", zap.Error(err))
	}
	defer cleanup()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)
	log.Info("Starting server", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
	if err := app.Listen(addr); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
