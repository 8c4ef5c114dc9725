// Package main is the entrypoint for the licman admin CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/config"
	"github.com/Kiefer-Networks/licence-manager/internal/costs"
	"github.com/Kiefer-Networks/licence-manager/internal/db"
	"github.com/Kiefer-Networks/licence-manager/internal/matching"
	"github.com/Kiefer-Networks/licence-manager/internal/reconcile"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "licman",
		Short:        "licence-manager admin CLI",
		Long:         `licman runs license reconciliation and review operations directly against the licence-manager database.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newReconcileCmd(),
		newRunsCmd(),
		newReviewCmd(),
		newConfirmCmd(),
		newRejectCmd(),
	)

	return rootCmd
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// connect opens the database using DATABASE_URL.
func connect(ctx context.Context, logger zerolog.Logger) (*db.DB, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg := db.DefaultConfig(url)
	cfg.MaxConns = 5
	cfg.MinConns = 1
	return db.New(ctx, cfg, logger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("licman %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}

func newReconcileCmd() *cobra.Command {
	var vendorID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile vendor license records against the employee directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
			defer cancel()

			database, err := connect(ctx, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			cfg := config.LoadServerConfig()
			matchCfg := matching.DefaultConfig(cfg.CompanyDomains)
			if cfg.FuzzyMinScore > 0 {
				matchCfg.FuzzyMinScore = cfg.FuzzyMinScore
			}

			normalizer := costs.NewNormalizer()
			if cfg.PriceBookPath != "" {
				normalizer, err = costs.LoadPriceBook(cfg.PriceBookPath)
				if err != nil {
					return err
				}
			}

			coordinator := reconcile.NewCoordinator(database, normalizer, matchCfg, logger)
			service := reconcile.NewService(database, coordinator, reconcile.ServiceConfig{
				Workers: cfg.ReconcileWorkers,
			}, nil, logger)

			var results []reconcile.Result
			if vendorID != "" {
				id, err := uuid.Parse(vendorID)
				if err != nil {
					return fmt.Errorf("invalid vendor id: %w", err)
				}
				result, err := service.ReconcileVendor(ctx, id)
				if err != nil {
					return err
				}
				results = []reconcile.Result{result}
			} else {
				results, err = service.ReconcileAll(ctx)
				if err != nil {
					return err
				}
			}

			for _, r := range results {
				if r.Failed() {
					fmt.Printf("%-30s FAILED: %s\n", r.VendorName, r.Error)
					continue
				}
				fmt.Printf("%-30s created=%d updated=%d expired=%d needs_review=%d skipped=%d\n",
					r.VendorName, r.Counts.Created, r.Counts.Updated, r.Counts.Expired,
					r.Counts.NeedsReview, r.Counts.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor", "", "Reconcile a single vendor by ID")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs <vendor-id>",
		Short: "List recent reconciliation runs for a vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid vendor id: %w", err)
			}

			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			database, err := connect(ctx, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			runs, err := database.ListSyncRuns(ctx, id, limit)
			if err != nil {
				return err
			}

			for _, run := range runs {
				line := fmt.Sprintf("%s  %-10s created=%d updated=%d expired=%d skipped=%d",
					run.StartedAt.Format(time.RFC3339), run.Status,
					run.Created, run.Updated, run.Expired, run.Skipped)
				if run.ErrorMessage != "" {
					line += "  error=" + run.ErrorMessage
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "List licenses waiting on a reviewer decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			database, err := connect(ctx, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			licenses, err := database.ListLicenses(ctx, db.LicenseFilter{NeedsReview: true})
			if err != nil {
				return err
			}

			if len(licenses) == 0 {
				fmt.Println("No licenses need review")
				return nil
			}

			for _, l := range licenses {
				suggested := "-"
				if l.SuggestedEmployeeID != nil {
					suggested = l.SuggestedEmployeeID.String()
				}
				fmt.Printf("%s  %-16s conf=%.2f  %-30s suggested=%s\n",
					l.ID, l.MatchStatus, l.MatchConfidence, l.Email, suggested)
			}
			return nil
		},
	}
}

func newConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <license-id> <employee-id>",
		Short: "Confirm which employee a license belongs to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			licenseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid license id: %w", err)
			}
			employeeID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid employee id: %w", err)
			}

			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			database, err := connect(ctx, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if _, err := database.GetEmployeeByID(ctx, employeeID); err != nil {
				return fmt.Errorf("employee not found: %w", err)
			}
			if err := database.ConfirmLicenseMatch(ctx, licenseID, employeeID); err != nil {
				return err
			}

			fmt.Printf("License %s confirmed for employee %s\n", licenseID, employeeID)
			return nil
		},
	}
}

func newRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <license-id>",
		Short: "Reject a suggested license match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			licenseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid license id: %w", err)
			}

			logger := newLogger()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			database, err := connect(ctx, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RejectLicenseMatch(ctx, licenseID); err != nil {
				return err
			}

			fmt.Printf("License %s match rejected\n", licenseID)
			return nil
		},
	}
}
