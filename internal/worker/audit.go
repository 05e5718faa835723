package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/kafka"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
)

// Source is the consumer side of the audit topic.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// AuditWriter:
// - fetches audit events from Kafka,
// - buffers them and flushes by size or time into ClickHouse,
// - commits offsets only after the rows are stored (at-least-once).
type AuditWriter struct {
	Source Source
	Repo   repository.CHAuditRepository

	BatchSize int           // max buffered messages per flush
	BatchWait time.Duration // max time to wait before flush
}

func NewAuditWriter(src Source, repo repository.CHAuditRepository) *AuditWriter {
	return &AuditWriter{
		Source:    src,
		Repo:      repo,
		BatchSize: 200,
		BatchWait: 500 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled or a flush fails. Uncommitted messages are
// redelivered to the next worker of the group.
func (w *AuditWriter) Run(ctx context.Context) error {
	if w.Source == nil || w.Repo == nil {
		return errors.New("audit-writer: source and repository are required")
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 200
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 500 * time.Millisecond
	}

	fetchCtx, stopFetch := context.WithCancel(ctx)
	defer stopFetch()

	msgCh := make(chan kafka.Message, w.BatchSize)
	go w.fetch(fetchCtx, msgCh)

	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	var (
		events  []model.AuditEvent
		pending []kafka.Message // includes poison messages so offsets stay ordered
	)

	flush := func(ctx context.Context) error {
		if len(pending) == 0 {
			return nil
		}
		if err := w.Repo.InsertBatch(ctx, events); err != nil {
			metrics.AuditEventsTotal.WithLabelValues("failed").Add(float64(len(events)))
			return fmt.Errorf("insert %d audit events: %w", len(events), err)
		}
		if err := w.Source.Commit(ctx, pending...); err != nil {
			return fmt.Errorf("commit %d messages: %w", len(pending), err)
		}
		metrics.AuditEventsTotal.WithLabelValues("stored").Add(float64(len(events)))
		logger.Log.Debug("audit batch flushed", zap.Int("events", len(events)), zap.Int("messages", len(pending)))
		events = events[:0]
		pending = pending[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			// drain what was already fetched, outside the cancelled context
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			err := flush(fctx)
			cancel()
			return err

		case m := <-msgCh:
			pending = append(pending, m)
			var e model.AuditEvent
			if err := json.Unmarshal(m.Value, &e); err != nil || e.RunID == "" || e.Action == "" {
				metrics.AuditEventsTotal.WithLabelValues("poison").Inc()
				logger.Log.Warn("skipping bad audit message",
					zap.Int("partition", m.Partition),
					zap.Int64("offset", m.Offset),
					zap.Error(err),
				)
			} else {
				events = append(events, e)
			}
			if len(pending) >= w.BatchSize {
				if err := flush(ctx); err != nil {
					return err
				}
			}

		case <-tick.C:
			if err := flush(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *AuditWriter) fetch(ctx context.Context, out chan<- kafka.Message) {
	for {
		m, err := w.Source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Warn("kafka fetch failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}
