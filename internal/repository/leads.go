package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// MaxBatchWrites is the per-commit write limit enforced by Firestore.
const MaxBatchWrites = 500

var ErrBatchTooLarge = errors.New("batch exceeds write limit")

// LeadsRepository reads and deletes documents of the leads collection.
type LeadsRepository interface {
	ListAll(ctx context.Context) ([]model.Lead, error)
	// ListRecent returns up to limit leads, newest first. An empty status matches every lead.
	ListRecent(ctx context.Context, limit int, status model.PaymentStatus) ([]model.Lead, error)
	Get(ctx context.Context, id string) (*model.Lead, error)
	Delete(ctx context.Context, id string) error
	// DeleteBatch deletes ids in one atomic commit of at most MaxBatchWrites writes.
	DeleteBatch(ctx context.Context, ids []string) error
	Stats(ctx context.Context) (model.LeadStats, error)
}

type LeadsRepositoryImpl struct {
	fs   *firestore.Client
	coll string
}

func NewLeadsRepository(fs *firestore.Client, collection string) *LeadsRepositoryImpl {
	if collection == "" {
		collection = "leads"
	}
	return &LeadsRepositoryImpl{fs: fs, coll: collection}
}

var _ LeadsRepository = (*LeadsRepositoryImpl)(nil)

func (r *LeadsRepositoryImpl) ListAll(ctx context.Context) ([]model.Lead, error) {
	docs, err := r.fs.Collection(r.coll).Documents(ctx).GetAll()
	if err != nil {
		return nil, classify("list leads", err)
	}
	return decodeLeads(docs)
}

func (r *LeadsRepositoryImpl) ListRecent(ctx context.Context, limit int, status model.PaymentStatus) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}

	q := r.fs.Collection(r.coll).Query
	if status != "" {
		q = q.Where("payment.status", "==", status.String())
	}
	q = q.OrderBy("createdAt", firestore.Desc).Limit(limit)

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, classify("list recent leads", err)
	}
	return decodeLeads(docs)
}

func (r *LeadsRepositoryImpl) Get(ctx context.Context, id string) (*model.Lead, error) {
	snap, err := r.fs.Collection(r.coll).Doc(id).Get(ctx)
	if err != nil {
		return nil, classify("get lead "+id, err)
	}
	l, err := decodeLead(snap)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadsRepositoryImpl) Delete(ctx context.Context, id string) error {
	if _, err := r.fs.Collection(r.coll).Doc(id).Delete(ctx); err != nil {
		return classify("delete lead "+id, err)
	}
	return nil
}

// DeleteBatch commits the deletes in a single write-only transaction so that
// either every id is removed or none is. The transaction is attempted once.
func (r *LeadsRepositoryImpl) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > MaxBatchWrites {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(ids), MaxBatchWrites)
	}

	coll := r.fs.Collection(r.coll)
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, id := range ids {
			if err := tx.Delete(coll.Doc(id)); err != nil {
				return err
			}
		}
		return nil
	}, firestore.MaxAttempts(1))
	if err != nil {
		return classify(fmt.Sprintf("delete batch of %d leads", len(ids)), err)
	}
	return nil
}

func (r *LeadsRepositoryImpl) Stats(ctx context.Context) (model.LeadStats, error) {
	var stats model.LeadStats

	it := r.fs.Collection(r.coll).Select("payment.status", "payment.amount").Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return model.LeadStats{}, classify("lead stats", err)
		}
		l, err := decodeLead(snap)
		if err != nil {
			return model.LeadStats{}, err
		}
		stats.Add(l)
	}
	return stats, nil
}

func decodeLeads(docs []*firestore.DocumentSnapshot) ([]model.Lead, error) {
	out := make([]model.Lead, 0, len(docs))
	for _, d := range docs {
		l, err := decodeLead(d)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func decodeLead(d *firestore.DocumentSnapshot) (model.Lead, error) {
	var l model.Lead
	if err := d.DataTo(&l); err != nil {
		return model.Lead{}, fmt.Errorf("decode lead %s: %w", d.Ref.ID, err)
	}
	l.ID = d.Ref.ID
	return l, nil
}
