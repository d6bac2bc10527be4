package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prajaktamali15/e-learning-platform/internal/bootstrap"
	"github.com/prajaktamali15/e-learning-platform/internal/config"
	"github.com/prajaktamali15/e-learning-platform/internal/server"
	"github.com/prajaktamali15/e-learning-platform/pkg/database"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN(), !cfg.IsProduction())
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	if err := bootstrap.SeedAdminUser(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword, log); err != nil {
		log.Fatal("failed to seed admin user", "error", err)
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, running without cache, locks and realtime notifications", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient, log)
	if err != nil {
		log.Fatal("failed to build server", "error", err)
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		log.Fatal("server exited with error", "error", err)
	}
	log.Info("server stopped")
}
