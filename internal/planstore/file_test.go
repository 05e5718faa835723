package planstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/config"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/util"
)

func samplePlan() model.Plan {
	return model.Plan{
		ID:             util.NewID(),
		KeepSetVersion: 3,
		CreatedAt:      time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
		Keep:           []model.Lead{{ID: "lead_A", Name: "Asha"}},
		Remove:         []model.Lead{{ID: "lead_B", Name: "test"}, {ID: "lead_C", Name: "demo"}},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	p := samplePlan()
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 3, got.KeepSetVersion)
	assert.Equal(t, []string{"lead_B", "lead_C"}, got.RemoveIDs())
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, s.Delete(ctx, p.ID))
	_, err = s.Load(ctx, p.ID)
	require.ErrorIs(t, err, ErrPlanNotFound)

	// deleting twice is fine
	require.NoError(t, s.Delete(ctx, p.ID))
}

func TestFileStoreExpiry(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	p := samplePlan()
	require.NoError(t, s.Save(ctx, p))

	now = now.Add(59 * time.Minute)
	_, err = s.Load(ctx, p.ID)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = s.Load(ctx, p.ID)
	require.ErrorIs(t, err, ErrPlanNotFound)

	_, statErr := os.Stat(filepath.Join(dir, p.ID+".json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"", "../../etc/passwd", "not-a-ulid"} {
		_, err := s.Load(ctx, id)
		require.ErrorIs(t, err, ErrPlanNotFound, id)
	}

	p := samplePlan()
	p.ID = "../escape"
	require.ErrorIs(t, s.Save(ctx, p), ErrPlanNotFound)
}

func TestFileStoreUnknownPlan(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)
	_, err = s.Load(context.Background(), util.NewID())
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(config.PlansConfig{Backend: "file", Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(config.PlansConfig{Backend: "redis"}, nil)
	require.Error(t, err)

	_, err = New(config.PlansConfig{Backend: "s3"}, nil)
	require.Error(t, err)
}
