package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
	"github.com/bharatcyclehub/bch-admin/internal/service/provision"
)

func provisionCmd() *cobra.Command {
	var t provision.Target
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the admin account if missing, assign admin claims and write its profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, ctx, cancel, app, err := adminEnv(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			defer cancel()
			defer rt.PushMetrics(ctx)

			pc := rt.Config.Admin.Provision
			target := provision.Target{
				Email:       firstNonEmpty(t.Email, pc.Email),
				Password:    firstNonEmpty(t.Password, pc.Password),
				DisplayName: firstNonEmpty(t.DisplayName, pc.DisplayName),
				Role:        firstNonEmpty(t.Role, pc.Role),
				Permissions: pc.Permissions,
			}

			p := provision.New(
				identity.NewFirebaseDirectory(app.Auth),
				repository.NewProfilesRepository(app.Firestore, rt.Config.Firebase.UsersCollection),
				rt.Recorder(),
			)
			out, err := p.Provision(ctx, target)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Created {
				fmt.Fprintf(w, "Created admin account %s (uid %s).\n", out.Account.Email, out.Account.UID)
				fmt.Fprintln(w, "Sign in and change the password right away.")
			} else {
				fmt.Fprintf(w, "Admin account %s already exists (uid %s).\n", out.Account.Email, out.Account.UID)
			}
			fmt.Fprintf(w, "Claims: admin=true role=%s. Profile written to %s/%s.\n",
				out.Account.Role(), rt.Config.Firebase.UsersCollection, out.Account.UID)
			return nil
		},
	}
	cmd.Flags().StringVar(&t.Email, "email", "", "account email (default admin.provision.email)")
	cmd.Flags().StringVar(&t.Password, "password", "", "password used only when the account is created")
	cmd.Flags().StringVar(&t.DisplayName, "display-name", "", "display name for a new account")
	cmd.Flags().StringVar(&t.Role, "role", "", "role claim (default admin.provision.role)")
	return cmd
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
