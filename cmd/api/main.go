package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"amazon-tracker/api"
	"amazon-tracker/config"
	"amazon-tracker/metrics"
	"amazon-tracker/storage"
	"amazon-tracker/utils"
)

func main() {
	logger := utils.NewLogger("api")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.DatabaseURL()); err != nil {
		logger.Error("Failed to run migrations: %v", err)
		os.Exit(1)
	}
	logger.Info("Migrations completed")

	store, err := storage.NewProductStore(context.Background(), cfg.DatabaseURL())
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	metrics.Init(store, logger)

	srv := api.New(cfg, store, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("Server error: %v", err)
		}
	}()
	logger.Info("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}
