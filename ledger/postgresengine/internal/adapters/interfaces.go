// Package adapters contains thin wrappers that let the Postgres ledger engine
// run on top of pgxpool.Pool, database/sql, or sqlx.DB connections.
package adapters

import (
	"context"
)

// DBRows abstracts over the row iterators of the supported database libraries.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBResult abstracts over the exec results of the supported database libraries.
type DBResult interface {
	RowsAffected() (int64, error)
}

// DBAdapter is the narrow database interface the Postgres ledger engine needs.
// Queries are fully rendered SQL strings; no placeholder binding happens here.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}
