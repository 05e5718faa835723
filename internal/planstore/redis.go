package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// RedisStore keeps plans as JSON strings that Redis expires after ttl.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "bch:plan:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttlOrDefault(ttl)}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Save(ctx context.Context, p model.Plan) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(p.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save plan %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (model.Plan, error) {
	if err := checkID(id); err != nil {
		return model.Plan{}, err
	}
	b, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Plan{}, fmt.Errorf("plan %s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("load plan %s: %w", id, err)
	}

	var p model.Plan
	if err := json.Unmarshal(b, &p); err != nil {
		return model.Plan{}, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	return nil
}
