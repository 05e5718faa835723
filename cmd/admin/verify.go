package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/service/verify"
)

func verifyCmd() *cobra.Command {
	var (
		email string
		role  string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that an account holds the admin claim, creating or repairing it if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, cancel, app, err := adminEnv(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			defer cancel()
			defer rt.PushMetrics(ctx)

			vc := rt.Config.Admin.Verify
			v := verify.New(identity.NewFirebaseDirectory(app.Auth), verify.Options{
				DefaultPassword: vc.DefaultPassword,
				DisplayName:     vc.DisplayName,
				Role:            firstNonEmpty(role, vc.Role),
			}, rt.Recorder())

			out, err := v.Verify(ctx, firstNonEmpty(email, vc.Email))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch out.State {
			case verify.StateAlreadyAdmin:
				fmt.Fprintf(w, "%s already has the admin claim (role %s). Nothing changed.\n", out.Account.Email, out.Account.Role())
			case verify.StateClaimAssigned:
				fmt.Fprintf(w, "Admin claim assigned to %s (role %s).\n", out.Account.Email, out.Account.Role())
			case verify.StateCreated:
				fmt.Fprintf(w, "Created %s with password %q and assigned the admin claim.\n", out.Account.Email, out.Password)
			}
			if out.State != verify.StateAlreadyAdmin {
				fmt.Fprintln(w, "Sign out and back in to pick up the new claims.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (default admin.verify.email)")
	cmd.Flags().StringVar(&role, "role", "", "role claim to assign (default admin.verify.role)")
	return cmd
}
