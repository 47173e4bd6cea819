// Package cli is the command-line adapter. Every command talks to the engine through
// app.ApplicationService.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"unit-recon/internal/app"
	"unit-recon/internal/config"
	"unit-recon/internal/logger"
)

// runner carries the state shared by every command of one invocation.
type runner struct {
	cfg config.Config
	// svc is opened lazily by the commands that need it
	svc     app.ApplicationService
	closeFn func()
}

// NewRootCommand returns the recon command tree.
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *runner) {
	r := &runner{}

	root := &cobra.Command{
		Use:   "recon",
		Short: "Unit-level reconciliation of purchase orders and deliveries",
		Long: `recon links individual ordered pieces to individual delivered pieces,
auto-matches them by product, serial, and batch, and reports what is still unmatched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			r.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		r.serveCommand(),
		r.migrateCommand(),
		r.demoCommand(),
		r.statsCommand(),
		r.reconcileCommand(),
		r.autoLinkCommand(),
		r.validateCommand(),
	)
	return root, r
}

// Execute runs the command tree with ctx and releases any connections it opened.
func Execute(ctx context.Context) error {
	root, r := newRootCommand()
	defer r.close()
	return root.ExecuteContext(ctx)
}

func (r *runner) close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}

// service opens the application service on first use.
func (r *runner) service(ctx context.Context) (app.ApplicationService, error) {
	if r.svc != nil {
		return r.svc, nil
	}
	svc, closeFn, err := openService(ctx, r.cfg)
	r.closeFn = closeFn
	if err != nil {
		return nil, err
	}
	r.svc = svc
	return svc, nil
}
