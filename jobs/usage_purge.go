package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// UsageService is the slice of the usage service the purge task needs.
type UsageService interface {
	PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

// JobMetrics records job outcomes.
type JobMetrics interface {
	ObserveJob(task, status string)
}

// UsagePurger removes usage records past the retention window.
type UsagePurger struct {
	usage   UsageService
	logger  *slog.Logger
	metrics JobMetrics
}

// NewUsagePurger constructs a UsagePurger.
func NewUsagePurger(usage UsageService, logger *slog.Logger, metrics JobMetrics) *UsagePurger {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsagePurger{usage: usage, logger: logger, metrics: metrics}
}

// HandleUsagePurgeTask processes TaskUsagePurge tasks.
func (p *UsagePurger) HandleUsagePurgeTask(ctx context.Context, t *asynq.Task) error {
	var payload UsagePurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays < 1 {
		p.logger.Warn("usage purge skipped", slog.Int("retention_days", payload.RetentionDays))
		return asynq.SkipRetry
	}
	removed, err := p.usage.PurgeOlderThan(ctx, payload.RetentionDays)
	if err != nil {
		p.observe("error")
		p.logger.Error("usage purge failed", slog.Any("error", err))
		return err
	}
	p.observe("ok")
	p.logger.Info("usage purge complete",
		slog.Int("retention_days", payload.RetentionDays),
		slog.Int64("rows_removed", removed),
	)
	return nil
}

func (p *UsagePurger) observe(status string) {
	if p.metrics != nil {
		p.metrics.ObserveJob(TaskUsagePurge, status)
	}
}
