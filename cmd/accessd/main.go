package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resonance-events/resonance-access/internal/app"
	"github.com/resonance-events/resonance-access/internal/catalog"
	"github.com/resonance-events/resonance-access/internal/directory"
	"github.com/resonance-events/resonance-access/internal/observability"
	"github.com/resonance-events/resonance-access/internal/permission"
	"github.com/resonance-events/resonance-access/internal/platform/cache"
	"github.com/resonance-events/resonance-access/internal/platform/db"
	"github.com/resonance-events/resonance-access/internal/usage"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, tier cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()

	directoryRepo := directory.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	assignmentRepo := permission.NewRepository(pool)
	usageRepo := usage.NewRepository(pool)

	permissionService := permission.NewService(directoryRepo, catalogRepo, assignmentRepo, usageRepo, logger)
	if redisClient != nil && cfg.TierCacheTTL > 0 {
		permissionService = permissionService.WithTierCache(permission.NewTierCache(redisClient, cfg.TierCacheTTL))
	}
	catalogService := catalog.NewService(catalogRepo)
	usageService := usage.NewService(usageRepo, catalogRepo)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		PermissionHandler: permission.NewHandler(logger, permissionService, metrics),
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		UsageHandler:      usage.NewHandler(logger, usageService),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("access service listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
