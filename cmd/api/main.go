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

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/payreminder/internal/app"
	"github.com/MrJamesThe3rd/payreminder/internal/config"
	"github.com/MrJamesThe3rd/payreminder/internal/database"
	payHttp "github.com/MrJamesThe3rd/payreminder/internal/http"
	reminderHandler "github.com/MrJamesThe3rd/payreminder/internal/http/reminder"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	services, err := app.New(ctx, cfg, db)
	if err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		go func() {
			if err := services.Runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("reminder scheduler stopped", "error", err)
			}
		}()
	}

	remindersH := reminderHandler.NewHandler(services.Reminders, services.Importer, services.Reconciler, services.Scheduler)

	router := payHttp.New(payHttp.Options{
		JWTSecret:          cfg.Auth.JWTSecret,
		AllowedOrigins:     cfg.Auth.AllowedOrigins,
		Timeout:            cfg.Server.Timeout,
		BatchRatePerMinute: cfg.Server.BatchRatePerMinute,
	}, remindersH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "app", cfg.App.Name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
