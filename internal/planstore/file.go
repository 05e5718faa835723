package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

type envelope struct {
	ExpiresAt time.Time  `json:"expires_at"`
	Plan      model.Plan `json:"plan"`
}

// FileStore keeps one JSON document per plan in a local directory.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("plans.dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create plan dir: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttlOrDefault(ttl), now: time.Now}, nil
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Save(_ context.Context, p model.Plan) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	b, err := json.MarshalIndent(envelope{ExpiresAt: s.now().Add(s.ttl).UTC(), Plan: p}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	// write-then-rename so a crashed save never leaves a truncated plan
	tmp := s.path(p.ID) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write plan %s: %w", p.ID, err)
	}
	if err := os.Rename(tmp, s.path(p.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write plan %s: %w", p.ID, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, id string) (model.Plan, error) {
	if err := checkID(id); err != nil {
		return model.Plan{}, err
	}
	b, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return model.Plan{}, fmt.Errorf("plan %s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("read plan %s: %w", id, err)
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return model.Plan{}, fmt.Errorf("decode plan %s: %w", id, err)
	}
	if !s.now().Before(env.ExpiresAt) {
		_ = os.Remove(s.path(id))
		return model.Plan{}, fmt.Errorf("plan %s expired at %s: %w", id, env.ExpiresAt.Format(time.RFC3339), ErrPlanNotFound)
	}
	return env.Plan, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	return nil
}
