package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// CHAuditRepository appends maintenance audit events to ClickHouse.
type CHAuditRepository interface {
	InsertBatch(ctx context.Context, events []model.AuditEvent) error
}

type chAuditRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHAuditRepository(ch *sqlx.DB) CHAuditRepository {
	return &chAuditRepository{ch: ch}
}

// InsertBatch sends all rows as a single ClickHouse block (prepare + exec per row + commit).
func (r *chAuditRepository) InsertBatch(ctx context.Context, events []model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.ch.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO bch.maintenance_audit (run_id, command, action, subject, detail, at)
	`)
	if err != nil {
		return fmt.Errorf("prepare audit batch: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.RunID, e.Command, e.Action.String(), e.Subject, e.Detail, e.At.UTC()); err != nil {
			return fmt.Errorf("append audit row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit batch: %w", err)
	}
	return nil
}
