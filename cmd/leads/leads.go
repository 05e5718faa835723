package leads

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
)

// NewLeadsCmd returns the parent "leads" command. With no subcommand it takes
// an optional mode argument: list (default) or delete-demo.
func NewLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "leads [list|delete-demo]",
		Short:     "Inspect and clean up the leads collection",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{model.ModeList.String(), model.ModeDeleteDemo.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) > 0 {
				raw = args[0]
			}
			mode, ok := model.ParseLeadsMode(raw)
			if !ok {
				return fmt.Errorf("unknown mode %q (want list or delete-demo)", raw)
			}
			if mode == model.ModeDeleteDemo {
				return runDeleteDemo(cmd)
			}
			return runList(cmd, false)
		},
	}
	cmd.Flags().Bool("dry-run", false, "with delete-demo: report matches without deleting")

	// attach subcommands
	cmd.AddCommand(listCmd())
	cmd.AddCommand(deleteDemoCmd())
	cmd.AddCommand(reconcileCmd())
	cmd.AddCommand(statsCmd())

	return cmd
}

// leadsEnv opens the runtime and the leads repository shared by all subcommands.
func leadsEnv(cmd *cobra.Command) (*bootstrap.Runtime, context.Context, context.CancelFunc, *repository.LeadsRepositoryImpl, error) {
	rt, err := bootstrap.Setup(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx, cancel := rt.Context(cmd.Context(), true)

	app, err := rt.Firebase(ctx)
	if err != nil {
		cancel()
		_ = rt.Close()
		return nil, nil, nil, nil, err
	}
	repo := repository.NewLeadsRepository(app.Firestore, rt.Config.Firebase.LeadsCollection)
	return rt, ctx, cancel, repo, nil
}
