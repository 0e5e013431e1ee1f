// Package procs replaces chartos/utils/async_process.py's AsyncProcess /
// AsyncProcessMetaclass with plain structs exposing explicit Start/Stop
// hooks, grounded on chartos/psql.py's PSQLPool and chartos/redis.py's
// RedisPool — no metaclass machinery is required once startup/shutdown is
// just two methods cmd/chartos calls directly.
package procs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPool owns the pgxpool.Pool used by every other component that
// talks to Postgres (migrate.Migrator, mvt.BuildTile, writepath.WritePath).
type PostgresPool struct {
	connString string
	pool       *pgxpool.Pool
}

// NewPostgresPool builds a PostgresPool around a libpq connection string.
// The pool itself is not created until Start runs.
func NewPostgresPool(connString string) *PostgresPool {
	return &PostgresPool{connString: connString}
}

// Start opens the underlying pgxpool.Pool, mirroring PSQLPool.on_startup's
// asyncpg.create_pool call.
func (p *PostgresPool) Start(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, p.connString)
	if err != nil {
		return err
	}
	p.pool = pool
	return nil
}

// Stop closes the pool, mirroring PSQLPool.on_shutdown's pool.close().
func (p *PostgresPool) Stop(ctx context.Context) error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// Pool returns the underlying pgxpool.Pool. Panics if Start has not run,
// the same contract async_process.py's fake dependable enforces at the
// Python layer ("Process ... wasn't initialized").
func (p *PostgresPool) Pool() *pgxpool.Pool {
	if p.pool == nil {
		panic("procs: PostgresPool.Pool() called before Start")
	}
	return p.pool
}

// Exec adapts pgxpool.Pool's Exec (which returns a pgconn.CommandTag) to
// the plain func(ctx, sql, args...) error shape migrate.New expects.
func (p *PostgresPool) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := p.Pool().Exec(ctx, sql, args...)
	return err
}
