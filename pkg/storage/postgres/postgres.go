// Package postgres owns the connection pool and schema for the postgres backend.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig tunes the connection pool. Zero values keep the defaults.
type PoolConfig struct {
	MaxConns        int32
	MaxConnLifetime time.Duration
	AppName         string
}

const (
	defaultMaxConns     = 10
	defaultConnLifetime = time.Hour
	defaultAppName      = "finance"
)

func (pc PoolConfig) apply(cfg *pgxpool.Config) {
	cfg.MaxConns = defaultMaxConns
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	cfg.MaxConnLifetime = defaultConnLifetime
	if pc.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pc.MaxConnLifetime
	}
	cfg.HealthCheckPeriod = 30 * time.Second

	name := pc.AppName
	if name == "" {
		name = defaultAppName
	}
	params := cfg.ConnConfig.RuntimeParams
	params["application_name"] = name
	// Transaction dates are calendar days in UTC.
	params["timezone"] = "UTC"
}

// Connect parses dsn, opens a pool and pings it.
func Connect(ctx context.Context, dsn string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pc.apply(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
