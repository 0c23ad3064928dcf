// Package repository stores users, scraped pages and prompt logs in
// PostgreSQL through a pgx connection pool.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig sizes the connection pool. Zero fields keep pgx defaults.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// ConnectTimeout bounds each new connection and the startup ping.
	ConnectTimeout time.Duration
}

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
}

// New opens a pool against databaseURL and checks that it answers.
func New(ctx context.Context, databaseURL string, pc PoolConfig) (*Repository, error) {
	config, err := parsePoolConfig(databaseURL, pc)
	if err != nil {
		return nil, err
	}

	if pc.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pc.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func parsePoolConfig(databaseURL string, pc PoolConfig) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if pc.MaxConns < 0 || pc.MinConns < 0 {
		return nil, errors.New("pool sizes must not be negative")
	}
	if pc.MaxConns > 0 {
		config.MaxConns = pc.MaxConns
	}
	if pc.MinConns > config.MaxConns {
		return nil, fmt.Errorf("min conns %d exceeds max conns %d", pc.MinConns, config.MaxConns)
	}
	config.MinConns = pc.MinConns

	if pc.MaxConnLifetime > 0 {
		config.MaxConnLifetime = pc.MaxConnLifetime
	}
	if pc.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = pc.MaxConnIdleTime
	}
	if pc.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = pc.ConnectTimeout
	}
	return config, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool exposes the pool for test setup such as advisory locks.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
