package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
	"github.com/bharatcyclehub/bch-admin/internal/config"
	"github.com/bharatcyclehub/bch-admin/internal/db"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MySQL lead archive and the ClickHouse audit table (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap.Setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, cancel := rt.Context(cmd.Context(), true)
		defer cancel()

		targets := []struct {
			dialect string
			cfg     config.DatabaseConfig
			open    func(config.DatabaseConfig) (*sqlx.DB, error)
		}{
			{db.DialectMySQL, rt.Config.MySQL, db.NewMySQLConnection},
			{db.DialectClickHouse, rt.Config.ClickHouse, db.NewClickHouseConnection},
		}

		ran := 0
		for _, t := range targets {
			if t.cfg.DSN == "" {
				logger.Log.Info("skipping migrations, no DSN", zap.String("dialect", t.dialect))
				continue
			}
			conn, err := t.open(t.cfg)
			if err != nil {
				return fmt.Errorf("%s connect: %w", t.dialect, err)
			}
			applied, err := db.Migrate(ctx, conn, t.dialect)
			_ = conn.Close()
			if err != nil {
				return fmt.Errorf("%s migrate: %w", t.dialect, err)
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			ran++
		}
		if ran == 0 {
			return fmt.Errorf("nothing to migrate: set mysql.dsn and/or clickhouse.dsn")
		}

		fmt.Fprintln(cmd.OutOrStdout(), ">> Migration complete")
		return nil
	},
}
