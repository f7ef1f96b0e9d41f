package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edupage-labs/coursevault/pkg/coursevault/api"
	"github.com/edupage-labs/coursevault/pkg/coursevault/config"
	repopg "github.com/edupage-labs/coursevault/pkg/coursevault/repo/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The record schema is migrated before the server takes traffic.
	if cfg.DatabaseKind() == "postgres" {
		if err := repopg.Migrate(cfg.DatabaseURL); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
	}

	svc, cleanup, err := cfg.BuildService(context.Background())
	if err != nil {
		slog.Error("Failed to build service", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	router := api.NewRouter(svc, api.Config{
		Environment:    cfg.Environment,
		DatabaseKind:   cfg.DatabaseKind(),
		StorageBackend: cfg.Storage.Backend,
		EnableMetrics:  cfg.EnableMetrics,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database", cfg.DatabaseKind(),
			"storage_backend", cfg.Storage.Backend)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
