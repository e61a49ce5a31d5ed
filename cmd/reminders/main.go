package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/payreminder/internal/app"
	"github.com/MrJamesThe3rd/payreminder/internal/config"
	"github.com/MrJamesThe3rd/payreminder/internal/database"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "reminders",
		Short:         "Operate the payment reminder engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(importCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// connect loads configuration and opens the database.
func connect() (*config.Config, *sql.DB, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return cfg, db, nil
}

// withApp runs fn with the wired services and closes the database afterwards.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	services, err := app.New(ctx, cfg, db)
	if err != nil {
		return err
	}

	return fn(services)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")

			return nil
		},
	}
}
