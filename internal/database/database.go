// Package database manages the PostgreSQL connection pool used to read
// catalog snapshots. It is strictly read-only: the connector never issues
// anything but SELECTs against the target database.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jkarni/ndc-postgres/internal/errs"
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
	cfg  *Config
}

// Connect builds the connection pool and verifies the database is reachable.
func Connect(ctx context.Context, cfg *Config) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidConfig, "invalid connection string", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err)
	}

	db := &DB{pool: pool, cfg: cfg}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return mapError(db.pool.Ping(ctx))
}

// BeginSnapshot starts the transaction that the catalog reader runs inside.
// REPEATABLE READ gives every query in the transaction the same consistent
// view of the catalogs; READ ONLY rules out accidental writes. The caller
// must Rollback when done.
func (db *DB) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return tx, nil
}

// WithQueryTimeout bounds ctx by the configured per-query deadline. The
// returned cancel function must always be called. A zero QueryTimeout
// leaves ctx unchanged.
func (db *DB) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.cfg.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.cfg.QueryTimeout)
}

// Pool returns the underlying pgxpool (for advanced use).
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
