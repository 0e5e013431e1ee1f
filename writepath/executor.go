package writepath

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is the narrow slice of pgxpool.Pool the write path drives:
// SendBatch pipelines the row-level write statements as one round trip,
// Query runs the per-view old-geometry UNION fetch, and Exec runs
// Truncate's single DELETE.
type Executor interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}
