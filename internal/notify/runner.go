package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/payreminder/internal/reconcile"
)

// Syncer reconciles all tenants before a notification pass.
type Syncer interface {
	RunAll(ctx context.Context) ([]reconcile.TenantResult, error)
}

// Runner drives the scheduler periodically: once at start, then every interval.
type Runner struct {
	scheduler *Scheduler
	syncer    Syncer
	interval  time.Duration
}

// NewRunner creates a runner. syncer may be nil to skip reconciliation.
func NewRunner(scheduler *Scheduler, syncer Syncer, interval time.Duration) *Runner {
	return &Runner{scheduler: scheduler, syncer: syncer, interval: interval}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("reminder scheduler started", "interval", r.interval, "sync", r.syncer != nil)

	r.Tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick performs a single sync and notification pass.
func (r *Runner) Tick(ctx context.Context) {
	if r.syncer != nil {
		results, err := r.syncer.RunAll(ctx)
		if err != nil {
			slog.Error("sync pass failed", "error", err)
		} else {
			var created, updated, failed int

			for _, tr := range results {
				created += tr.Result.Created
				updated += tr.Result.Updated

				if tr.Err != nil {
					failed++
				}
			}

			slog.Info("sync pass finished", "tenants", len(results), "created", created, "updated", updated, "failed", failed)
		}
	}

	res, err := r.scheduler.Process(ctx)
	if err != nil {
		slog.Error("notification pass failed", "error", err)
		return
	}

	slog.Info("notification pass finished", "sent", res.Sent, "errors", len(res.Errors))
}
