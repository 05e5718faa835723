package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bharatcyclehub/bch-admin/cmd/admin"
	"github.com/bharatcyclehub/bch-admin/cmd/leads"
	"github.com/bharatcyclehub/bch-admin/cmd/worker"
	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
)

var rootCmd = &cobra.Command{
	Use:           "bch-admin",
	Short:         "Bharat Cycle Hub lead maintenance and admin provisioning",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree; it is the only place that exits the process.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	bootstrap.BindFlags(rootCmd)
	rootCmd.AddCommand(leads.NewLeadsCmd())
	rootCmd.AddCommand(admin.NewAdminCmd())
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}
