package worker

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/bootstrap"
	"github.com/bharatcyclehub/bch-admin/internal/db"
	"github.com/bharatcyclehub/bch-admin/internal/kafka"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
	"github.com/bharatcyclehub/bch-admin/internal/worker"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Drain maintenance audit events from Kafka into ClickHouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		rt, err := bootstrap.Setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		cfg := rt.Config

		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is empty")
		}
		metrics.MustRegister(prometheus.DefaultRegisterer)

		// 2) ClickHouse
		chDB, err := db.NewClickHouseConnection(cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		rt.OnClose(chDB.Close)

		// 3) kafka consumer
		groupID := cfg.Kafka.GroupID
		if groupID == "" {
			groupID = "bch-audit"
		}
		consumer := kafka.NewConsumerFromConfig(kafka.Config{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Audit.Topic,
			GroupID:        groupID,
			MinBytes:       cfg.Kafka.MinBytes,
			MaxBytes:       cfg.Kafka.MaxBytes,
			CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
		})
		rt.OnClose(consumer.Close)

		w := worker.NewAuditWriter(consumer, repository.NewCHAuditRepository(chDB))
		// tune knobs
		if cfg.Audit.BatchSize > 0 {
			w.BatchSize = cfg.Audit.BatchSize
		}
		if cfg.Audit.BatchWait > 0 {
			w.BatchWait = cfg.Audit.BatchWait
		}

		// 4) graceful shutdown
		ctx, stop := rt.Context(cmd.Context(), false)
		defer stop()

		logger.Log.Info("audit worker started",
			zap.String("topic", cfg.Audit.Topic),
			zap.String("group", groupID),
			zap.Int("batch_size", w.BatchSize),
			zap.Duration("batch_wait", w.BatchWait),
		)
		return w.Run(ctx)
	},
}
