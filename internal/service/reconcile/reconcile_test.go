package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/audit/audittest"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// fakeStore is an in-memory leads collection that records every commit.
type fakeStore struct {
	leads   map[string]model.Lead
	order   []string
	commits [][]string
	failOn  int // 1-based commit number that fails; 0 = never
	listErr error
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{leads: map[string]model.Lead{}}
	for _, id := range ids {
		s.add(model.Lead{ID: id, Name: "name " + id})
	}
	return s
}

func (s *fakeStore) add(l model.Lead) {
	s.leads[l.ID] = l
	s.order = append(s.order, l.ID)
}

func (s *fakeStore) ListAll(context.Context) ([]model.Lead, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Lead
	for _, id := range s.order {
		if l, ok := s.leads[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteBatch(_ context.Context, ids []string) error {
	if len(ids) > MaxBatchSize {
		return fmt.Errorf("batch of %d exceeds limit", len(ids))
	}
	if s.failOn > 0 && len(s.commits)+1 == s.failOn {
		return errors.New("commit failed")
	}
	s.commits = append(s.commits, append([]string(nil), ids...))
	for _, id := range ids {
		delete(s.leads, id)
	}
	return nil
}

func (s *fakeStore) remaining() []string {
	var ids []string
	for id := range s.leads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeArchive struct {
	archived []string
	err      error
}

func (a *fakeArchive) Archive(_ context.Context, _ string, leads []model.Lead) error {
	if a.err != nil {
		return a.err
	}
	for _, l := range leads {
		a.archived = append(a.archived, l.ID)
	}
	return nil
}

// stallingSink blocks every Emit until its context ends, like an unreachable broker.
type stallingSink struct{ calls atomic.Int32 }

func (s *stallingSink) Emit(ctx context.Context, _ model.AuditEvent) error {
	s.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func run(t *testing.T, r *Reconciler, keep model.KeepSet) (Result, error) {
	t.Helper()
	plan, err := r.Plan(context.Background(), keep)
	require.NoError(t, err)
	return r.Apply(context.Background(), plan)
}

func TestReconcileScenario(t *testing.T) {
	store := newFakeStore("lead_A", "lead_B", "lead_C")
	var out bytes.Buffer
	mem := &audittest.Memory{}
	r := New(store, Options{Out: &out, Recorder: audit.NewRecorder("run", "leads reconcile", mem)})

	res, err := run(t, r, model.NewKeepSet(1, "lead_A"))
	require.NoError(t, err)

	assert.Equal(t, Result{Kept: 1, Deleted: 2, Batches: 1}, res)
	assert.Equal(t, []string{"lead_A"}, store.remaining())
	assert.Contains(t, out.String(), "KEEP: lead_A | name lead_A")
	assert.Equal(t, 1, mem.Actions()[model.ActionKept])
	assert.Equal(t, 2, mem.Actions()[model.ActionDeleted])
}

func TestReconcileStalledAuditSinkDoesNotBlockDeletes(t *testing.T) {
	store := newFakeStore("lead_A", "lead_B", "lead_C")
	sink := &stallingSink{}
	rec := audit.NewRecorder("run", "leads reconcile", sink)
	rec.Timeout = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := New(store, Options{Recorder: rec})
	plan, err := r.Plan(ctx, model.NewKeepSet(1, "lead_A"))
	require.NoError(t, err)

	res, err := r.Apply(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, Result{Kept: 1, Deleted: 2, Batches: 1}, res)
	assert.Equal(t, []string{"lead_A"}, store.remaining())
	assert.Positive(t, sink.calls.Load())
	assert.NoError(t, ctx.Err())
}

func TestReconcileEmptyKeepSetRemovesAll(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	res, err := run(t, New(store, Options{}), model.NewKeepSet(1))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Deleted)
	assert.Empty(t, store.remaining())
}

func TestReconcileFullKeepSetRemovesNone(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	res, err := run(t, New(store, Options{}), model.NewKeepSet(1, "a", "b", "c", "not-in-store"))
	require.NoError(t, err)
	assert.Equal(t, Result{Kept: 3}, res)
	assert.Empty(t, store.commits)
	assert.Equal(t, []string{"a", "b", "c"}, store.remaining())
}

func TestReconcileChunksAtBatchLimit(t *testing.T) {
	for _, n := range []int{1, 499, 500, 501, 1000, 1234} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			store := newFakeStore("keep")
			for i := 0; i < n; i++ {
				store.add(model.Lead{ID: fmt.Sprintf("lead_%05d", i)})
			}

			res, err := run(t, New(store, Options{}), model.NewKeepSet(1, "keep"))
			require.NoError(t, err)

			wantBatches := (n + MaxBatchSize - 1) / MaxBatchSize
			assert.Equal(t, wantBatches, res.Batches)
			assert.Len(t, store.commits, wantBatches)

			seen := map[string]int{}
			for _, c := range store.commits {
				assert.LessOrEqual(t, len(c), MaxBatchSize)
				for _, id := range c {
					seen[id]++
				}
			}
			assert.Len(t, seen, n)
			for id, count := range seen {
				assert.Equal(t, 1, count, "id %s committed more than once", id)
				assert.NotEqual(t, "keep", id)
			}
			assert.Equal(t, []string{"keep"}, store.remaining())
		})
	}
}

func TestReconcileFailedBatchKeepsEarlierCommits(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 1200; i++ {
		store.add(model.Lead{ID: fmt.Sprintf("lead_%05d", i)})
	}
	store.failOn = 2

	res, err := run(t, New(store, Options{}), model.NewKeepSet(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete batch 2/3")

	assert.Equal(t, Result{Deleted: 500, Batches: 1}, res)
	assert.Len(t, store.remaining(), 700)
}

func TestReconcileSmallerBatchSize(t *testing.T) {
	store := newFakeStore("a", "b", "c", "d", "e")
	res, err := run(t, New(store, Options{BatchSize: 2}), model.NewKeepSet(1))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, store.commits)
}

func TestReconcileArchivesBeforeDelete(t *testing.T) {
	store := newFakeStore("a", "b")
	arch := &fakeArchive{}
	_, err := run(t, New(store, Options{Archive: arch}), model.NewKeepSet(1, "a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, arch.archived)

	store = newFakeStore("a", "b")
	arch = &fakeArchive{err: errors.New("mysql down")}
	res, err := run(t, New(store, Options{Archive: arch}), model.NewKeepSet(1, "a"))
	require.Error(t, err)
	assert.Zero(t, res.Deleted)
	assert.Equal(t, []string{"a", "b"}, store.remaining())
}

func TestPlanReadError(t *testing.T) {
	store := newFakeStore()
	store.listErr = model.ErrPermissionDenied
	_, err := New(store, Options{}).Plan(context.Background(), model.NewKeepSet(1))
	require.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestConfirmNeverDeletesUnplannedLeads(t *testing.T) {
	store := newFakeStore("keep", "old1", "old2")
	r := New(store, Options{})

	preview, err := r.Plan(context.Background(), model.NewKeepSet(1, "keep"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"old1", "old2"}, preview.RemoveIDs())

	// between preview and confirm: a new lead arrives, one planned lead
	// disappears and another is promoted into the keep-set
	store.add(model.Lead{ID: "fresh"})
	delete(store.leads, "old1")
	store.add(model.Lead{ID: "old3"})
	preview.Remove = append(preview.Remove, model.Lead{ID: "old3"}, model.Lead{ID: "old2"})

	confirmed, err := r.Confirm(context.Background(), preview, model.NewKeepSet(2, "keep", "old3"))
	require.NoError(t, err)
	assert.Equal(t, preview.ID, confirmed.ID)
	assert.Equal(t, []string{"old2"}, confirmed.RemoveIDs())

	res, err := r.Apply(context.Background(), confirmed)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, []string{"fresh", "keep", "old3"}, store.remaining())
}

func TestChunk(t *testing.T) {
	leads := make([]model.Lead, 5)
	assert.Len(t, Chunk(leads, 2), 3)
	assert.Len(t, Chunk(leads, 5), 1)
	assert.Empty(t, Chunk(nil, 5))
	assert.Len(t, Chunk(leads, 0), 1)
}
