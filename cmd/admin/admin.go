package admin

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
	"github.com/bharatcyclehub/bch-admin/internal/firebase"
)

// NewAdminCmd returns the parent "admin" command.
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Provision and verify admin accounts",
	}
	// attach subcommands
	cmd.AddCommand(provisionCmd())
	cmd.AddCommand(verifyCmd())

	return cmd
}

func adminEnv(cmd *cobra.Command) (*bootstrap.Runtime, context.Context, context.CancelFunc, *firebase.App, error) {
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
	return rt, ctx, cancel, app, nil
}
