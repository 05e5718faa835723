// Package planstore keeps previewed reconciliation plans until an operator
// confirms them.
package planstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bharatcyclehub/bch-admin/internal/config"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/util"
)

const DefaultTTL = 24 * time.Hour

// ErrPlanNotFound is returned for unknown, malformed or expired plan ids.
var ErrPlanNotFound = errors.New("plan not found or expired")

type Store interface {
	Save(ctx context.Context, p model.Plan) error
	Load(ctx context.Context, id string) (model.Plan, error)
	Delete(ctx context.Context, id string) error
}

// New picks a backend from cfg. rdb is only required for the redis backend.
func New(cfg config.PlansConfig, rdb *redis.Client) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir, cfg.TTL)
	case "redis":
		if rdb == nil {
			return nil, errors.New("plans.backend=redis requires redis.addr")
		}
		return NewRedisStore(rdb, cfg.KeyPrefix, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown plans.backend %q", cfg.Backend)
	}
}

// checkID rejects anything that is not a ULID, which also keeps ids safe to
// use as file names.
func checkID(id string) error {
	if _, err := util.IDTime(id); err != nil {
		return fmt.Errorf("plan %q: %w", id, ErrPlanNotFound)
	}
	return nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
