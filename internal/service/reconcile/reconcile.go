package reconcile

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
	"github.com/bharatcyclehub/bch-admin/internal/util"
)

// MaxBatchSize is the largest number of deletes committed together.
const MaxBatchSize = repository.MaxBatchWrites

// Store is the part of the leads repository the reconciler needs.
type Store interface {
	ListAll(ctx context.Context) ([]model.Lead, error)
	DeleteBatch(ctx context.Context, ids []string) error
}

// Archiver copies leads somewhere durable before they are deleted.
type Archiver interface {
	Archive(ctx context.Context, runID string, leads []model.Lead) error
}

type Options struct {
	BatchSize int      // clamped to [1, MaxBatchSize]
	Archive   Archiver // optional
	Recorder  *audit.Recorder
	Out       io.Writer // per-record report lines
}

// Reconciler deletes every lead whose id is not in the keep-set.
type Reconciler struct {
	store     Store
	archive   Archiver
	rec       *audit.Recorder
	out       io.Writer
	batchSize int

	now   func() time.Time
	newID func() string
}

func New(store Store, opts Options) *Reconciler {
	size := opts.BatchSize
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Reconciler{
		store:     store,
		archive:   opts.Archive,
		rec:       opts.Recorder,
		out:       out,
		batchSize: size,
		now:       time.Now,
		newID:     util.NewID,
	}
}

// Result counts what a run actually committed.
type Result struct {
	Kept    int
	Deleted int
	Batches int
}

// Partition splits leads into those whose id is in the keep-set and the rest.
// Input order is preserved in both halves.
func Partition(leads []model.Lead, keep model.KeepSet) (kept, remove []model.Lead) {
	ids := keep.IDs()
	for _, l := range leads {
		if _, ok := ids[l.ID]; ok {
			kept = append(kept, l)
		} else {
			remove = append(remove, l)
		}
	}
	return kept, remove
}

// Chunk splits leads into consecutive slices of at most size elements.
func Chunk(leads []model.Lead, size int) [][]model.Lead {
	if size <= 0 {
		size = MaxBatchSize
	}
	var out [][]model.Lead
	for start := 0; start < len(leads); start += size {
		end := min(start+size, len(leads))
		out = append(out, leads[start:end])
	}
	return out
}

// Plan reads the whole collection and computes the KEEP/REMOVE partition.
func (r *Reconciler) Plan(ctx context.Context, keep model.KeepSet) (model.Plan, error) {
	leads, err := r.store.ListAll(ctx)
	if err != nil {
		return model.Plan{}, fmt.Errorf("read leads: %w", err)
	}

	kept, remove := Partition(leads, keep)
	return model.Plan{
		ID:             r.newID(),
		KeepSetVersion: keep.Version,
		CreatedAt:      r.now().UTC(),
		Keep:           kept,
		Remove:         remove,
	}, nil
}

// Confirm re-reads the collection and narrows a stored plan to what is still
// safe to delete: ids in the stored REMOVE set that are present now and still
// outside the keep-set. Leads created after the preview are never touched.
func (r *Reconciler) Confirm(ctx context.Context, stored model.Plan, keep model.KeepSet) (model.Plan, error) {
	current, err := r.Plan(ctx, keep)
	if err != nil {
		return model.Plan{}, err
	}

	planned := make(map[string]struct{}, len(stored.Remove))
	for _, l := range stored.Remove {
		planned[l.ID] = struct{}{}
	}

	var remove []model.Lead
	for _, l := range current.Remove {
		if _, ok := planned[l.ID]; ok {
			remove = append(remove, l)
		}
	}

	current.ID = stored.ID
	current.Remove = remove
	return current, nil
}

// Apply reports the KEEP leads and deletes the REMOVE leads in sequential
// batches. A failed batch stops the run; earlier batches stay committed and
// are reflected in the returned Result.
func (r *Reconciler) Apply(ctx context.Context, plan model.Plan) (Result, error) {
	var res Result

	for _, l := range plan.Keep {
		fmt.Fprintf(r.out, "KEEP: %s | %s\n", l.ID, l.Name)
		r.rec.Record(ctx, model.ActionKept, l.ID, l.Name)
		res.Kept++
	}
	metrics.LeadsTotal.WithLabelValues("kept").Add(float64(res.Kept))

	batches := Chunk(plan.Remove, r.batchSize)
	for i, batch := range batches {
		label := fmt.Sprintf("%d/%d", i+1, len(batches))

		if r.archive != nil {
			if err := r.archive.Archive(ctx, plan.ID, batch); err != nil {
				metrics.BatchesTotal.WithLabelValues("failed").Inc()
				return res, fmt.Errorf("archive batch %s: %w", label, err)
			}
			metrics.LeadsTotal.WithLabelValues("archived").Add(float64(len(batch)))
			for _, l := range batch {
				r.rec.Record(ctx, model.ActionArchived, l.ID, plan.ID)
			}
		}

		ids := make([]string, 0, len(batch))
		for _, l := range batch {
			ids = append(ids, l.ID)
		}
		if err := r.store.DeleteBatch(ctx, ids); err != nil {
			metrics.BatchesTotal.WithLabelValues("failed").Inc()
			logger.Log.Error("delete batch failed",
				zap.String("batch", label),
				zap.Int("size", len(ids)),
				zap.Int("deleted_so_far", res.Deleted),
				zap.Error(err),
			)
			return res, fmt.Errorf("delete batch %s: %w", label, err)
		}

		res.Batches++
		res.Deleted += len(ids)
		metrics.BatchesTotal.WithLabelValues("committed").Inc()
		metrics.LeadsTotal.WithLabelValues("deleted").Add(float64(len(ids)))
		for _, l := range batch {
			r.rec.Record(ctx, model.ActionDeleted, l.ID, "batch "+strconv.Itoa(i+1))
		}
		logger.Log.Info("batch committed", zap.String("batch", label), zap.Int("size", len(ids)))
	}

	return res, nil
}
