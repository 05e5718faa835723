package leads

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bharatcyclehub/bch-admin/internal/report"
	"github.com/bharatcyclehub/bch-admin/internal/service/demo"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the most recent leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asTable, _ := cmd.Flags().GetBool("table")
			return runList(cmd, asTable)
		},
	}
	cmd.Flags().Bool("table", false, "render as a table")
	return cmd
}

func runList(cmd *cobra.Command, asTable bool) error {
	rt, ctx, cancel, repo, err := leadsEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	defer cancel()

	out := cmd.OutOrStdout()
	if asTable {
		leads, err := repo.ListRecent(ctx, rt.Config.Demo.Limit, "")
		if err != nil {
			return fmt.Errorf("read recent leads: %w", err)
		}
		fmt.Fprintln(out, report.Leads(leads))
		return nil
	}

	_, err = demo.NewLister(repo, rt.Config.Demo.Limit, out).List(ctx)
	return err
}

func deleteDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-demo",
		Short: "Delete recent leads whose name is a placeholder (test, demo, asdf, ...)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteDemo(cmd)
		},
	}
	cmd.Flags().Bool("dry-run", false, "report matches without deleting")
	return cmd
}

// runDeleteDemo backs the delete-demo subcommand and the parent's mode
// argument; both define --dry-run.
func runDeleteDemo(cmd *cobra.Command) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	rt, ctx, cancel, repo, err := leadsEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	defer cancel()
	defer rt.PushMetrics(ctx)

	cfg := rt.Config.Demo
	cleaner := demo.NewCleaner(repo, demo.NewMatcher(cfg.Tokens, cfg.Prefixes), demo.Options{
		Limit:    cfg.Limit,
		DryRun:   dryRun,
		Recorder: rt.Recorder(),
		Out:      cmd.OutOrStdout(),
	})

	res, err := cleaner.Run(ctx)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Aborted: deleted %d of %d matching leads.\n", res.Deleted, res.Matched)
		return err
	}
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d of %d recent leads match.\n", res.Matched, res.Scanned)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Done: deleted %d demo leads out of %d scanned.\n", res.Deleted, res.Scanned)
	return nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count leads by payment status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, cancel, repo, err := leadsEnv(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			defer cancel()

			stats, err := repo.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Stats(stats))
			return nil
		},
	}
}
