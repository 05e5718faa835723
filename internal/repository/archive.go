package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/util"
)

// ArchiveRepository keeps a MySQL copy of every lead before it is deleted.
type ArchiveRepository interface {
	// Archive writes leads in its own transaction.
	Archive(ctx context.Context, runID string, leads []model.Lead) error
	// ArchiveBatch writes leads inside tx. If tx is nil a transaction is opened and committed.
	ArchiveBatch(ctx context.Context, tx *sqlx.Tx, runID string, leads []model.Lead) error
}

type ArchiveRepositoryImpl struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepositoryImpl {
	return &ArchiveRepositoryImpl{db: db, now: time.Now}
}

var _ ArchiveRepository = (*ArchiveRepositoryImpl)(nil)

// withTx runs fn in the provided tx, or starts a new transaction when tx is nil.
func (r *ArchiveRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}

	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}

	return t.Commit()
}

func (r *ArchiveRepositoryImpl) Archive(ctx context.Context, runID string, leads []model.Lead) error {
	return r.ArchiveBatch(ctx, nil, runID, leads)
}

func (r *ArchiveRepositoryImpl) ArchiveBatch(ctx context.Context, tx *sqlx.Tx, runID string, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	query, args, err := buildArchiveInsert(runID, leads, r.now().UTC())
	if err != nil {
		return err
	}

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("archive %d leads: %w", len(leads), err)
		}
		return nil
	})
}

// buildArchiveInsert renders one multi-row upsert; re-archiving a lead refreshes its row.
func buildArchiveInsert(runID string, leads []model.Lead, archivedAt time.Time) (string, []any, error) {
	var sb strings.Builder
	args := make([]any, 0, len(leads)*10)

	sb.WriteString(`INSERT INTO lead_archive
		(lead_id, run_id, name, phone, email, source, payment_status, payload, lead_created_at, archived_at)
	VALUES `)
	for i, l := range leads {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")

		payload, err := json.Marshal(l)
		if err != nil {
			return "", nil, fmt.Errorf("marshal lead %s: %w", l.ID, err)
		}
		var createdAt any
		if !l.CreatedAt.IsZero() {
			createdAt = l.CreatedAt.UTC()
		}
		args = append(args,
			l.ID, runID, l.Name, util.NormalizePhone(l.Phone), l.Email, l.Source,
			l.Payment.Status.String(), payload, createdAt, archivedAt,
		)
	}
	sb.WriteString(`
	ON DUPLICATE KEY UPDATE
		run_id         = VALUES(run_id),
		payload        = VALUES(payload),
		archived_at    = VALUES(archived_at)`)

	return sb.String(), args, nil
}
