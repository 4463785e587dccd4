package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new sqlx adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlxRows{rows: rows}, nil
}

func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlxResult{result: result}, nil
}

// sqlxRows wraps sql.Rows to implement the DBRows interface.
type sqlxRows struct {
	rows *sql.Rows
}

func (s *sqlxRows) Next() bool {
	return s.rows.Next()
}

func (s *sqlxRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *sqlxRows) Close() error {
	return s.rows.Close()
}

// sqlxResult wraps sql.Result to implement the DBResult interface.
type sqlxResult struct {
	result sql.Result
}

func (s *sqlxResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}
