package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/resonance-events/resonance-access/internal/app"
	"github.com/resonance-events/resonance-access/internal/catalog"
	"github.com/resonance-events/resonance-access/internal/observability"
	"github.com/resonance-events/resonance-access/internal/platform/db"
	"github.com/resonance-events/resonance-access/internal/usage"
	"github.com/resonance-events/resonance-access/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	metrics := observability.NewMetrics()

	usageRepo := usage.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	usageService := usage.NewService(usageRepo, catalogRepo)
	purger := jobs.NewUsagePurger(usageService, logger, metrics)

	purgeTask, err := jobs.NewUsagePurgeTask(jobs.UsagePurgePayload{RetentionDays: cfg.UsageRetentionDays})
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskUsagePurge, Handler: purger.HandleUsagePurgeTask},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.UsagePurgeCron, Task: purgeTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
