package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"unit-recon/internal/adapters/web"
	"unit-recon/internal/app"
	"unit-recon/internal/config"
	"unit-recon/internal/db"
)

func (r *runner) serveCommand() *cobra.Command {
	var (
		port            string
		gracefulTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Starts the reconciliation API server. It shuts down gracefully on SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := r.service(ctx)
			if err != nil {
				return err
			}
			if port == "" {
				port = r.cfg.ServerPort
			}

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           web.NewHandler(svc, r.cfg.AllowedOrigins, r.cfg.RequestBodyLimit),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Str("store", r.cfg.StoreDriver).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "server port (overrides SERVER_PORT)")
	cmd.Flags().DurationVar(&gracefulTimeout, "graceful-timeout", 15*time.Second, "graceful shutdown timeout")
	return cmd
}

func (r *runner) migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	requirePostgres := func() error {
		if r.cfg.StoreDriver != config.DriverPostgres {
			return fmt.Errorf("migrate requires STORE_DRIVER=%s", config.DriverPostgres)
		}
		return nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePostgres(); err != nil {
				return err
			}
			if err := db.MigrateUp(r.cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePostgres(); err != nil {
				return err
			}
			if err := db.MigrateDown(r.cfg.DatabaseURL, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

// scopeFlags registers --po and --delivery and returns a parser for them.
func scopeFlags(cmd *cobra.Command) func() (app.Scope, error) {
	var po, delivery string
	cmd.Flags().StringVar(&po, "po", "", "purchase order id")
	cmd.Flags().StringVar(&delivery, "delivery", "", "delivery id")
	return func() (app.Scope, error) {
		var scope app.Scope
		if po != "" {
			id, err := uuid.Parse(po)
			if err != nil {
				return scope, fmt.Errorf("invalid --po: %w", err)
			}
			scope.PurchaseOrderID = &id
		}
		if delivery != "" {
			id, err := uuid.Parse(delivery)
			if err != nil {
				return scope, fmt.Errorf("invalid --delivery: %w", err)
			}
			scope.DeliveryID = &id
		}
		return scope, nil
	}
}

func (r *runner) statsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show unit and link counts for a purchase order and/or delivery",
		Args:  cobra.NoArgs,
	}
	scope := scopeFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		sc, err := scope()
		if err != nil {
			return err
		}
		svc, err := r.service(cmd.Context())
		if err != nil {
			return err
		}
		stats, err := svc.GetStats(cmd.Context(), sc)
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	}
	return cmd
}

func (r *runner) reconcileCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Print the reconciliation report for a purchase order and/or delivery",
		Args:  cobra.NoArgs,
	}
	scope := scopeFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		sc, err := scope()
		if err != nil {
			return err
		}
		svc, err := r.service(cmd.Context())
		if err != nil {
			return err
		}
		report, err := svc.Reconcile(cmd.Context(), sc)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	}
	return cmd
}

func (r *runner) autoLinkCommand() *cobra.Command {
	var (
		po, delivery            string
		matchSerial, matchBatch bool
		preview                 bool
	)
	cmd := &cobra.Command{
		Use:   "autolink",
		Short: "Pair unlinked units of a purchase order and a delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			poID, err := uuid.Parse(po)
			if err != nil {
				return fmt.Errorf("invalid --po: %w", err)
			}
			deliveryID, err := uuid.Parse(delivery)
			if err != nil {
				return fmt.Errorf("invalid --delivery: %w", err)
			}
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			req := app.AutoLinkRequest{
				PurchaseOrderID: poID,
				DeliveryID:      deliveryID,
				MatchBySerial:   matchSerial,
				MatchByBatch:    matchBatch,
			}
			if preview {
				res, err := svc.PreviewAutoLink(cmd.Context(), req)
				if err != nil {
					return err
				}
				printPairs(cmd.OutOrStdout(), res.Links)
				return nil
			}
			res, err := svc.AutoLink(cmd.Context(), req)
			if err != nil {
				return err
			}
			printAutoLink(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&po, "po", "", "purchase order id (required)")
	cmd.Flags().StringVar(&delivery, "delivery", "", "delivery id (required)")
	cmd.Flags().BoolVar(&matchSerial, "match-serial", false, "require equal serial numbers")
	cmd.Flags().BoolVar(&matchBatch, "match-batch", false, "require equal batch numbers")
	cmd.Flags().BoolVar(&preview, "preview", false, "show the pairs without creating links")
	_ = cmd.MarkFlagRequired("po")
	_ = cmd.MarkFlagRequired("delivery")
	return cmd
}

func (r *runner) validateCommand() *cobra.Command {
	var (
		poUnit, deliveryUnit string
		req                  app.ValidateLinkRequest
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether two units may be linked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.OrderUnitID, err = uuid.Parse(poUnit); err != nil {
				return fmt.Errorf("invalid --po-unit: %w", err)
			}
			if req.DeliveryUnitID, err = uuid.Parse(deliveryUnit); err != nil {
				return fmt.Errorf("invalid --delivery-unit: %w", err)
			}
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ValidateLink(cmd.Context(), req)
			if err != nil {
				return err
			}
			printValidation(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&poUnit, "po-unit", "", "purchase order unit id (required)")
	cmd.Flags().StringVar(&deliveryUnit, "delivery-unit", "", "delivery unit id (required)")
	cmd.Flags().BoolVar(&req.RequireSerialMatch, "require-serial", false, "treat missing or differing serial numbers as errors")
	cmd.Flags().BoolVar(&req.RequireBatchMatch, "require-batch", false, "treat missing or differing batch numbers as errors")
	_ = cmd.MarkFlagRequired("po-unit")
	_ = cmd.MarkFlagRequired("delivery-unit")
	return cmd
}
