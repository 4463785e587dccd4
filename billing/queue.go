package billing

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
)

// Queue row statuses.
const (
	requestStatusPending      = "pending"
	requestStatusSucceeded    = "succeeded"
	requestStatusManualReview = "manual_review"
)

// Request is one durable charge request owned by the reconciler.
// Rows are derived from LoanMarkedComplete / HoldExpired events and keyed by
// RequestID, so re-deriving them is idempotent.
type Request struct {
	RequestID     core.RequestIDString `db:"request_id"`
	Barcode       core.BarcodeString   `db:"barcode"`
	LoanID        core.LoanIDString    `db:"loan_id"`
	Amount        decimal.Decimal      `db:"amount"`
	Attempts      int                  `db:"attempts"`
	NextAttemptAt time.Time            `db:"next_attempt_at"`
	Status        string               `db:"status"`
	ManualReview  bool                 `db:"manual_review"`
}

// Queue is the durable charge request store the reconciler works from.
type Queue interface {
	// Enqueue inserts a request if its request id is not present yet.
	Enqueue(ctx context.Context, request Request) error

	// Due returns pending requests whose next attempt time has passed.
	Due(ctx context.Context, now time.Time, limit int) ([]Request, error)

	// RecordFailure bumps the attempt count and reschedules the request.
	RecordFailure(ctx context.Context, requestID core.RequestIDString, attempts int, nextAttemptAt time.Time) error

	// Postpone pushes the next attempt time without consuming an attempt,
	// used while the collaborator still reports the charge as pending.
	Postpone(ctx context.Context, requestID core.RequestIDString, nextAttemptAt time.Time) error

	// MarkSucceeded resolves the request after a successful charge.
	MarkSucceeded(ctx context.Context, requestID core.RequestIDString) error

	// MarkManualReview parks the request after retries are exhausted.
	MarkManualReview(ctx context.Context, requestID core.RequestIDString) error
}

// PostgresQueue is the sqlx-backed Queue used in production.
// Table DDL ships in schema/billing_requests.sql.
type PostgresQueue struct {
	db *sqlx.DB
}

// NewPostgresQueue creates a PostgresQueue on the given database handle.
func NewPostgresQueue(db *sqlx.DB) *PostgresQueue {
	return &PostgresQueue{db: db}
}

// Enqueue implements Queue. The insert is idempotent on request_id.
func (q *PostgresQueue) Enqueue(ctx context.Context, request Request) error {
	const query = `
		INSERT INTO billing_requests
			(request_id, barcode, loan_id, amount, attempts, next_attempt_at, status, manual_review)
		VALUES
			(:request_id, :barcode, :loan_id, :amount, :attempts, :next_attempt_at, :status, :manual_review)
		ON CONFLICT (request_id) DO NOTHING`

	if request.Status == "" {
		request.Status = requestStatusPending
	}

	_, err := q.db.NamedExecContext(ctx, query, request)

	return err
}

// Due implements Queue.
func (q *PostgresQueue) Due(ctx context.Context, now time.Time, limit int) ([]Request, error) {
	const query = `
		SELECT request_id, barcode, loan_id, amount, attempts, next_attempt_at, status, manual_review
		FROM billing_requests
		WHERE status = $1 AND next_attempt_at <= $2
		ORDER BY next_attempt_at
		LIMIT $3`

	requests := make([]Request, 0)

	err := q.db.SelectContext(ctx, &requests, query, requestStatusPending, now, limit)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// RecordFailure implements Queue.
func (q *PostgresQueue) RecordFailure(
	ctx context.Context,
	requestID core.RequestIDString,
	attempts int,
	nextAttemptAt time.Time,
) error {
	const query = `
		UPDATE billing_requests
		SET attempts = $2, next_attempt_at = $3
		WHERE request_id = $1`

	_, err := q.db.ExecContext(ctx, query, requestID, attempts, nextAttemptAt)

	return err
}

// Postpone implements Queue.
func (q *PostgresQueue) Postpone(ctx context.Context, requestID core.RequestIDString, nextAttemptAt time.Time) error {
	const query = `
		UPDATE billing_requests
		SET next_attempt_at = $2
		WHERE request_id = $1`

	_, err := q.db.ExecContext(ctx, query, requestID, nextAttemptAt)

	return err
}

// MarkSucceeded implements Queue.
func (q *PostgresQueue) MarkSucceeded(ctx context.Context, requestID core.RequestIDString) error {
	return q.setStatus(ctx, requestID, requestStatusSucceeded, false)
}

// MarkManualReview implements Queue.
func (q *PostgresQueue) MarkManualReview(ctx context.Context, requestID core.RequestIDString) error {
	return q.setStatus(ctx, requestID, requestStatusManualReview, true)
}

func (q *PostgresQueue) setStatus(ctx context.Context, requestID core.RequestIDString, status string, manualReview bool) error {
	const query = `
		UPDATE billing_requests
		SET status = $2, manual_review = $3
		WHERE request_id = $1`

	_, err := q.db.ExecContext(ctx, query, requestID, status, manualReview)

	return err
}
