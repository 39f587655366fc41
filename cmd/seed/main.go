package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
	"github.com/ManuelReschke/SubDesk/internal/pkg/database"
	"github.com/ManuelReschke/SubDesk/internal/pkg/env"
	"github.com/ManuelReschke/SubDesk/internal/pkg/logger"
	"github.com/ManuelReschke/SubDesk/internal/pkg/seed"
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

	command := "all"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	db, err := database.SetupDatabase(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect database", zap.Error(err))
	}
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	switch command {
	case "admin":
		_, err = seed.Admin(ctx, repos.User, log)
	case "faqs":
		_, err = seed.Faqs(ctx, repos.Faq, log)
	case "all":
		err = seed.All(ctx, repos, log)
	default:
		fmt.Println("Usage: go run ./cmd/seed [admin|faqs|all]")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Seed failed", zap.String("command", command), zap.Error(err))
	}
}
