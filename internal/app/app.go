// Package app wires the services shared by the API server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/payreminder/internal/cloud"
	"github.com/MrJamesThe3rd/payreminder/internal/config"
	"github.com/MrJamesThe3rd/payreminder/internal/importer"
	"github.com/MrJamesThe3rd/payreminder/internal/notification"
	"github.com/MrJamesThe3rd/payreminder/internal/notification/dynamo"
	"github.com/MrJamesThe3rd/payreminder/internal/notification/sns"
	notificationStore "github.com/MrJamesThe3rd/payreminder/internal/notification/store"
	"github.com/MrJamesThe3rd/payreminder/internal/notify"
	"github.com/MrJamesThe3rd/payreminder/internal/reconcile"
	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
	reminderStore "github.com/MrJamesThe3rd/payreminder/internal/reminder/store"
	sourceStore "github.com/MrJamesThe3rd/payreminder/internal/source/store"
)

type App struct {
	Reminders  *reminder.Service
	Importer   *importer.Service
	Reconciler *reconcile.Reconciler
	Scheduler  *notify.Scheduler
	Runner     *notify.Runner
}

func New(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	sink, err := newSink(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	renderer, err := notify.NewRenderer(cfg.Notify.Locale)
	if err != nil {
		return nil, err
	}

	var (
		ledger     = reminderStore.New(db)
		reminders  = reminder.NewService(ledger)
		reconciler = reconcile.New(sourceStore.New(db), ledger, reconcile.Options{
			SyncInstruments: cfg.Reconcile.SyncInstruments,
		})
		scheduler = notify.NewScheduler(ledger, sink,
			notify.WithRenderer(renderer),
			notify.WithClaimLease(cfg.Scheduler.ClaimLease),
		)
	)

	var syncer notify.Syncer
	if cfg.Scheduler.SyncBeforeProcess {
		syncer = reconciler
	}

	return &App{
		Reminders:  reminders,
		Importer:   importer.NewService(reminders),
		Reconciler: reconciler,
		Scheduler:  scheduler,
		Runner:     notify.NewRunner(scheduler, syncer, cfg.Scheduler.Interval),
	}, nil
}

// newSink builds the notification backend. An SNS topic, when configured, is
// published to alongside the primary store.
func newSink(ctx context.Context, cfg *config.Config, db *sql.DB) (notification.Sink, error) {
	var primary notification.Sink

	switch cfg.Notify.Sink {
	case config.SinkDynamo:
		awsCfg, err := cloud.Load(ctx, cfg)
		if err != nil {
			return nil, err
		}

		primary = dynamo.NewSink(dynamo.NewClient(awsCfg, cloud.Endpoint(cfg)), cfg.AWS.NotificationsTable)
	default:
		primary = notificationStore.New(db)
	}

	if cfg.Notify.SNSTopicARN == "" {
		return primary, nil
	}

	awsCfg, err := cloud.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring sns: %w", err)
	}

	slog.Info("publishing notifications to sns", "topic", cfg.Notify.SNSTopicARN)

	return notification.Fanout{
		primary,
		sns.NewPublisher(sns.NewClient(awsCfg, cloud.Endpoint(cfg)), cfg.Notify.SNSTopicARN),
	}, nil
}
