package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/payreminder/internal/app"
)

func syncCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile reminders with open invoices and instruments",
		Long: `Reconcile reminders with the source ledgers.

Without --tenant every tenant that has open invoices or outstanding
instruments is synced. A tenant already being synced elsewhere is skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			return withApp(cmd.Context(), func(a *app.App) error {
				if tenant != "" {
					id, err := uuid.Parse(tenant)
					if err != nil {
						return fmt.Errorf("invalid tenant id: %w", err)
					}

					res, err := a.Reconciler.Run(cmd.Context(), id)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "%s: created %d, updated %d\n", id, res.Created, res.Updated)

					return nil
				}

				results, err := a.Reconciler.RunAll(cmd.Context())
				if err != nil {
					return err
				}

				var failed int

				for _, tr := range results {
					if tr.Err != nil {
						failed++

						fmt.Fprintf(out, "%s: %v\n", tr.TenantID, tr.Err)

						continue
					}

					fmt.Fprintf(out, "%s: created %d, updated %d\n", tr.TenantID, tr.Result.Created, tr.Result.Updated)
				}

				if failed > 0 {
					return fmt.Errorf("%d of %d tenants failed", failed, len(results))
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "sync a single tenant")

	return cmd
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Emit notifications for reminders whose fire date has arrived",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Scheduler.Process(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "sent %d notifications\n", res.Sent)

				for _, e := range res.Errors {
					fmt.Fprintf(out, "  %s\n", e.Error())
				}

				return nil
			})
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler loop until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				err := a.Runner.Run(cmd.Context())
				if errors.Is(err, context.Canceled) {
					return nil
				}

				return err
			})
		},
	}
}

func importCmd() *cobra.Command {
	var (
		tenant string
		path   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create manual reminders from a CSV file",
		Long: `Create manual reminders from a CSV file.

Comma and semicolon delimited files are accepted, with English or Turkish
headers. Rows that fail validation are reported and skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid tenant id: %w", err)
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()

			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Importer.Import(cmd.Context(), id, f)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "imported %d reminders\n", len(res.Created))

				for _, rej := range res.Rejected {
					fmt.Fprintf(out, "  line %d: %s\n", rej.Line, rej.Reason)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant that owns the reminders")
	cmd.Flags().StringVarP(&path, "file", "f", "", "CSV file to import")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
