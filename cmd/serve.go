package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
	"github.com/bharatcyclehub/bch-admin/internal/db"
	httpSrv "github.com/bharatcyclehub/bch-admin/internal/http"
	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap.Setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := rt.Context(cmd.Context(), false)
		defer stop()

		cfg := rt.Config
		app, err := rt.Firebase(ctx)
		if err != nil {
			return err
		}

		deps := httpSrv.Deps{
			Leads:    repository.NewLeadsRepository(app.Firestore, cfg.Firebase.LeadsCollection),
			Verifier: identity.NewFirebaseDirectory(app.Auth),
			Audit:    rt.AuditSink(),
		}

		redisClient, err := db.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		if redisClient != nil {
			rt.OnClose(redisClient.Close)
			deps.Redis = redisClient
		}

		if cfg.Archive.Enabled {
			mysqlDB, err := db.NewMySQLConnection(cfg.MySQL)
			if err != nil {
				return fmt.Errorf("mysql connect: %w", err)
			}
			rt.OnClose(mysqlDB.Close)
			deps.Archive = repository.NewArchiveRepository(mysqlDB)
		}

		metrics.MustRegister(prometheus.DefaultRegisterer)
		server := httpSrv.NewServer(cfg, deps)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		select {
		case <-ctx.Done():
			logger.Log.Info("signal received, shutting down")
		case err := <-errCh:
			if err != nil {
				logger.Log.Error("http server exited", zap.Error(err))
			}
		}

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(sctx)

		return nil
	},
}
