package db

import (
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"

	"github.com/bharatcyclehub/bch-admin/internal/config"
)

// NewClickHouseConnection opens the audit store, e.g.
// clickhouse://default:@localhost:9000/bch?dial_timeout=5s&compress=true
func NewClickHouseConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("empty ClickHouse DSN (set clickhouse.dsn or BCH_CLICKHOUSE_DSN)")
	}
	db, err := sqlx.Open("clickhouse", cfg.DSN)
	if err != nil {
		return nil, err
	}
	return db, configurePool(db, cfg, 3*time.Second)
}
