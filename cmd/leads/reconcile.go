package leads

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
	"github.com/bharatcyclehub/bch-admin/internal/config"
	"github.com/bharatcyclehub/bch-admin/internal/db"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/planstore"
	"github.com/bharatcyclehub/bch-admin/internal/report"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
	"github.com/bharatcyclehub/bch-admin/internal/service/reconcile"
)

type reconcileFlags struct {
	keepSet string
	dryRun  bool
	yes     bool
	confirm string
}

func reconcileCmd() *cobra.Command {
	var f reconcileFlags
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Delete every lead whose id is not in the keep-set",
		Long: `Reads the whole leads collection and splits it into KEEP (id in the
keep-set) and REMOVE (everything else). The plan is always printed and saved.

Nothing is deleted unless --yes is given, the plan id is typed at the prompt,
or the command is re-run with --confirm <plan-id>. A confirmed plan only
deletes leads that were in its REMOVE set and are still outside the keep-set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.keepSet, "keep-set", "", "keep-set YAML file (default keep_set.path)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "preview only; never delete")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "delete right after the preview without prompting")
	cmd.Flags().StringVar(&f.confirm, "confirm", "", "apply a previously saved plan by id")
	cmd.MarkFlagsMutuallyExclusive("yes", "confirm")
	return cmd
}

func runReconcile(cmd *cobra.Command, f reconcileFlags) error {
	rt, ctx, cancel, repo, err := leadsEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	defer cancel()
	defer rt.PushMetrics(ctx)

	cfg := rt.Config
	out := cmd.OutOrStdout()

	keepPath := f.keepSet
	if keepPath == "" {
		keepPath = cfg.KeepSet.Path
	}
	keep, err := config.LoadKeepSet(keepPath)
	if err != nil {
		return err
	}

	plans, err := openPlanStore(rt)
	if err != nil {
		return err
	}

	opts := reconcile.Options{
		BatchSize: cfg.Reconcile.BatchSize,
		Recorder:  rt.Recorder(),
		Out:       out,
	}
	if cfg.Archive.Enabled {
		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		rt.OnClose(mysqlDB.Close)
		opts.Archive = repository.NewArchiveRepository(mysqlDB)
	}
	r := reconcile.New(repo, opts)

	var plan model.Plan
	if f.confirm != "" {
		stored, err := plans.Load(ctx, f.confirm)
		if err != nil {
			return err
		}
		if plan, err = r.Confirm(ctx, stored, keep); err != nil {
			return err
		}
		fmt.Fprintln(out, report.Plan(plan))
		if dropped := len(stored.Remove) - len(plan.Remove); dropped > 0 {
			fmt.Fprintf(out, "%d planned leads are gone or now in the keep-set; they will be skipped.\n", dropped)
		}
	} else {
		if plan, err = r.Plan(ctx, keep); err != nil {
			return err
		}
		fmt.Fprintln(out, report.Plan(plan))
		if err := plans.Save(ctx, plan); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plan %s saved (keep-set v%d).\n", plan.ID, plan.KeepSetVersion)
	}

	if !shouldApply(f, interactive(), cmd.InOrStdin(), out, plan) {
		if f.dryRun {
			fmt.Fprintln(out, "Dry run: nothing deleted.")
		} else {
			fmt.Fprintf(out, "Nothing deleted. Re-run with --confirm %s to apply this plan.\n", plan.ID)
		}
		return nil
	}

	res, err := r.Apply(ctx, plan)
	if err != nil {
		fmt.Fprintf(out, "Aborted after %d batches: deleted %d demo leads, kept %d real leads.\n", res.Batches, res.Deleted, res.Kept)
		return err
	}
	if err := plans.Delete(context.WithoutCancel(ctx), plan.ID); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}

	fmt.Fprintf(out, "Done: deleted %d demo leads, kept %d real leads.\n", res.Deleted, res.Kept)
	return nil
}

func openPlanStore(rt *bootstrap.Runtime) (planstore.Store, error) {
	cfg := rt.Config
	if cfg.Plans.Backend != "redis" {
		return planstore.New(cfg.Plans, nil)
	}
	rdb, err := db.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	if rdb != nil {
		rt.OnClose(rdb.Close)
	}
	return planstore.New(cfg.Plans, rdb)
}

// shouldApply decides whether a printed plan may be deleted. --dry-run always
// wins; --yes and --confirm apply without asking; otherwise the operator has to
// type the plan id on an interactive terminal.
func shouldApply(f reconcileFlags, interactive bool, in io.Reader, out io.Writer, plan model.Plan) bool {
	switch {
	case f.dryRun:
		return false
	case f.yes, f.confirm != "":
		return true
	case !interactive:
		return false
	default:
		return promptPlanID(in, out, plan)
	}
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptPlanID asks the operator to type the plan id back before deleting.
func promptPlanID(in io.Reader, out io.Writer, plan model.Plan) bool {
	if len(plan.Remove) == 0 {
		return true
	}
	fmt.Fprintf(out, "Type the plan id to delete %d leads: ", len(plan.Remove))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == plan.ID
}
