// Package postgresengine implements the loan ledger on top of PostgreSQL.
//
// Events live in a single append-only table. A "dynamic stream" is whatever
// set of rows a ledger.Filter selects, and optimistic concurrency is enforced
// by guarding every insert with the stream's max sequence number at query time.
package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/toolroom/loantrack/ledger"
	"github.com/toolroom/loantrack/ledger/postgresengine/internal/adapters"
)

const (
	defaultEventTableName          = "loan_events"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgSingleEventSQLFailed     = "failed to convert single event insert statement to SQL"
	logMsgMultiEventSQLFailed      = "failed to convert multiple events insert statement to SQL"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "ledger operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedSequence        = "expected_sequence"
	logActionQuery                 = "query"
	logActionAppend                = "append"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colSequenceNumber              = "sequence_number"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxSeq                    = "max_seq"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// Ledger stores and queries loan events in PostgreSQL.
// It leverages a database adapter and supports customizable logging and event table configuration.
type Ledger struct {
	db               adapters.DBAdapter
	eventTableName   string
	logger           ledger.Logger
	contextualLogger ledger.ContextualLogger
	metricsCollector ledger.MetricsCollector
	tracingCollector ledger.TracingCollector
}

// Option defines a functional option for configuring a Ledger.
type Option func(*Ledger) error

// WithTableName sets the events table name for the Ledger.
func WithTableName(tableName string) Option {
	return func(l *Ledger) error {
		if tableName == "" {
			return ledger.ErrEmptyEventsTableName
		}

		l.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Ledger.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Event counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Ledger.
// Log records emitted through it carry trace and span correlation when
// tracing is enabled.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(l *Ledger) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Ledger.
// The collector receives query and append durations, event counts,
// concurrency conflicts, and database errors.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(l *Ledger) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Ledger.
// Every query and append runs inside its own span.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(l *Ledger) error {
		l.tracingCollector = collector
		return nil
	}
}

type queryResultRow struct {
	eventType         string
	payload           []byte
	metadata          []byte
	occurredAt        time.Time
	maxSequenceNumber ledger.MaxSequenceNumberUint
}

// NewLedgerFromPGXPool creates a new Ledger using a pgx Pool with optional configuration.
func NewLedgerFromPGXPool(db *pgxpool.Pool, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, ledger.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewPGXAdapter(db), options...)
}

// NewLedgerFromPGXPoolWithReplica creates a new Ledger with a primary pool for
// writes and strongly consistent reads plus a replica pool that serves reads
// when the context allows eventual consistency.
func NewLedgerFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Ledger, error) {
	if primary == nil || replica == nil {
		return Ledger{}, ledger.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewLedgerFromSQLDB creates a new Ledger using a sql.DB with optional configuration.
func NewLedgerFromSQLDB(db *sql.DB, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, ledger.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewSQLAdapter(db), options...)
}

// NewLedgerFromSQLX creates a new Ledger using a sqlx.DB with optional configuration.
func NewLedgerFromSQLX(db *sqlx.DB, options ...Option) (Ledger, error) {
	if db == nil {
		return Ledger{}, ledger.ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewSQLXAdapter(db), options...)
}

func newLedger(db adapters.DBAdapter, options ...Option) (Ledger, error) {
	l := Ledger{
		db:             db,
		eventTableName: defaultEventTableName,
	}

	for _, option := range options {
		if err := option(&l); err != nil {
			return Ledger{}, err
		}
	}

	return l, nil
}

// Query retrieves events from the Postgres ledger based on the provided ledger.Filter criteria
// and returns them as ledger.StorableEvents
// as well as the MaxSequenceNumberUint for this dynamic stream at the time of the query.
func (l Ledger) Query(ctx context.Context, filter ledger.Filter) (
	ledger.StorableEvents,
	ledger.MaxSequenceNumberUint,
	error,
) {

	var empty ledger.StorableEvents

	ctx, span := l.startQuerySpan(ctx)
	start := time.Now()

	sqlQuery, buildQueryErr := l.buildSelectQuery(filter)
	if buildQueryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgBuildSelectQueryFailed, logAttrError, buildQueryErr.Error())
		}
		l.logErrorContext(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		l.observeQueryError(ctx, span, errorTypeBuildQuery, time.Since(start))

		return empty, 0, buildQueryErr
	}

	rows, duration, queryErr := l.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		l.logErrorContext(ctx, logMsgDBQueryFailed, queryErr)
		l.observeQueryError(ctx, span, errorTypeDatabase, time.Since(start))

		return empty, 0, queryErr
	}
	defer l.closeRows(rows)

	eventStream, maxSequenceNumber, scanErr := l.processQueryResults(rows)
	if scanErr != nil {
		l.logErrorContext(ctx, logMsgScanRowFailed, scanErr)
		l.observeQueryError(ctx, span, errorTypeScanRow, time.Since(start))

		return empty, 0, scanErr
	}

	l.logOperation(
		logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, l.durationToMilliseconds(duration))
	l.logOperationContext(ctx,
		logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, l.durationToMilliseconds(duration))

	l.observeQuerySuccess(ctx, span, len(eventStream), maxSequenceNumber, time.Since(start))

	return eventStream, maxSequenceNumber, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (l Ledger) executeQuery(ctx context.Context, sqlQuery string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := l.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, duration, errors.Join(ledger.ErrQueryingEventsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (l Ledger) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if l.logger != nil {
			l.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// processQueryResults processes database rows and converts them to storable events.
func (l Ledger) processQueryResults(rows adapters.DBRows) (
	ledger.StorableEvents,
	ledger.MaxSequenceNumberUint,
	error,
) {

	var empty ledger.StorableEvents
	result := queryResultRow{}
	eventStream := make(ledger.StorableEvents, 0)
	maxSequenceNumber := ledger.MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.maxSequenceNumber)
		if rowScanErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			}

			return empty, 0, errors.Join(ledger.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := ledger.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgBuildStorableEventFailed, logAttrError, buildStorableErr.Error(), logAttrEventType, result.eventType)
			}

			return empty, 0, errors.Join(ledger.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = result.maxSequenceNumber
	}

	return eventStream, maxSequenceNumber, nil
}

// Append attempts to append one or multiple ledger.StorableEvent(s) onto the Postgres ledger respecting concurrency constraints
// for this dynamic stream based on the provided ledger.Filter criteria and the expected MaxSequenceNumberUint.
//
// The provided ledger.Filter criteria should be the same as the ones used for the Query before making the business decisions.
//
// The insert query to append multiple events atomically is heavier than the one built to append a single event.
// One scan or command should typically only produce one event.
// Only supply multiple events if you are sure that you need to append multiple events at once!
func (l Ledger) Append(
	ctx context.Context,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
	event ledger.StorableEvent,
	additionalEvents ...ledger.StorableEvent,
) error {

	allEvents := ledger.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	ctx, span := l.startAppendSpan(ctx, len(allEvents), expectedMaxSequenceNumber)
	start := time.Now()

	sqlQuery, buildQueryErr := l.buildAppendQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		l.logErrorContext(ctx, logMsgBuildInsertQueryFailed, buildQueryErr)
		l.observeAppendError(ctx, span, errorTypeBuildQuery, time.Since(start))

		return buildQueryErr
	}

	rowsAffected, duration, execErr := l.executeAppendQuery(ctx, sqlQuery)
	if execErr != nil {
		l.logErrorContext(ctx, logMsgDBExecFailed, execErr)
		l.observeAppendError(ctx, span, errorTypeDatabase, time.Since(start))

		return execErr
	}

	if err := l.validateAppendResult(rowsAffected, len(allEvents), expectedMaxSequenceNumber); err != nil {
		l.observeAppendConflict(ctx, span, time.Since(start))

		return err
	}

	l.logOperation(
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, l.durationToMilliseconds(duration),
	)
	l.logOperationContext(ctx,
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, l.durationToMilliseconds(duration),
	)

	l.observeAppendSuccess(ctx, span, rowsAffected, time.Since(start))

	return nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (l Ledger) buildAppendQuery(
	allEvents ledger.StorableEvents,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	var sqlQuery sqlQueryString
	var buildQueryErr error

	switch len(allEvents) {
	case 1:
		sqlQuery, buildQueryErr = l.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)

	default:
		sqlQuery, buildQueryErr = l.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
	}

	if buildQueryErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrEventCount, len(allEvents))
		}

		return "", buildQueryErr
	}

	return sqlQuery, nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
func (l Ledger) executeAppendQuery(ctx context.Context, sqlQuery string) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	tag, execErr := l.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if execErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, duration, errors.Join(ledger.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, duration, errors.Join(ledger.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// validateAppendResult checks if the append operation was successful and detects concurrency conflicts.
func (l Ledger) validateAppendResult(
	rowsAffected int64,
	expectedEventCount int,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) error {

	if rowsAffected < int64(expectedEventCount) {
		l.logOperation(
			logMsgConcurrencyConflict,
			logAttrExpectedEvents, expectedEventCount,
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)

		return ledger.ErrConcurrencyConflict
	}

	return nil
}

func (l Ledger) buildSelectQuery(filter ledger.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(l.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt = l.addWhereClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) buildInsertQueryForSingleEvent(
	event ledger.StorableEvent,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the subquery for the CTE
	cteStmt := builder.
		From(l.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	cteStmt = l.addWhereClause(filter, cteStmt)

	// Define the SELECT for the INSERT
	selectStmt := builder.
		From(cteContext).
		Select(goqu.V(event.EventType), goqu.V(event.OccurredAt), goqu.V(event.PayloadJSON), goqu.V(event.MetadataJSON)).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	// Finalize the full INSERT query
	insertStmt := builder.
		Insert(l.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgSingleEventSQLFailed, logAttrError, toSQLErr.Error(), logAttrEventType, event.EventType)
		}
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) buildInsertQueryForMultipleEvents(
	events []ledger.StorableEvent,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the subquery for the CTE
	cteStmt := builder.
		From(l.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	cteStmt = l.addWhereClause(filter, cteStmt)

	// Create individual SELECT statements for each event
	unionStatements := make([]*goqu.SelectDataset, len(events))
	for i, event := range events {
		unionStatements[i] = builder.
			Select(
				goqu.L(castText, event.EventType).As(colEventType),
				goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
				goqu.L(castJsonb, event.PayloadJSON).As(colPayload),
				goqu.L(castJsonb, event.MetadataJSON).As(colMetadata),
			)
	}

	// Combine all SELECT statements with UNION ALL
	valuesStmt := unionStatements[0]
	for i := 1; i < len(unionStatements); i++ {
		valuesStmt = valuesStmt.UnionAll(unionStatements[i])
	}

	// Finalize the full INSERT query
	valsEventType := fmt.Sprintf("%s.%s", cteVals, colEventType)
	valsOccurredAt := fmt.Sprintf("%s.%s", cteVals, colOccurredAt)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, colPayload)
	valsMetadata := fmt.Sprintf("%s.%s", cteVals, colMetadata)

	insertStmt := builder.
		Insert(l.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(valsEventType, valsOccurredAt, valsPayload, valsMetadata).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		if l.logger != nil {
			l.logger.Error(logMsgMultiEventSQLFailed, logAttrError, toSQLErr.Error(), logAttrEventCount, len(events))
		}
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l Ledger) addWhereClause(filter ledger.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	if filter.IsEmpty() {
		return selectStmt
	}

	expressions := make([]goqu.Expression, 0)

	eventTypeExpressions := make([]goqu.Expression, 0)
	for _, eventType := range filter.EventTypes() {
		eventTypeExpressions = append(
			eventTypeExpressions,
			goqu.Ex{colEventType: eventType},
		)
	}

	if len(eventTypeExpressions) > 0 {
		// eventTypes must always be filtered with OR ;-)
		expressions = append(expressions, goqu.Or(eventTypeExpressions...))
	}

	predicateExpressions := make([]goqu.Expression, 0)
	for _, predicate := range filter.Predicates() {
		predicateExpressions = append(
			predicateExpressions,
			goqu.L(fmt.Sprintf(`%s @> '{"%s": "%s"}'`, colPayload, predicate.Key(), predicate.Val())),
		)
	}

	if len(predicateExpressions) > 0 {
		expressions = append(expressions, goqu.Or(predicateExpressions...))
	}

	return selectStmt.Where(goqu.And(expressions...))
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (l Ledger) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if l.logger != nil {
		l.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, l.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (l Ledger) logOperation(action string, args ...any) {
	if l.logger != nil {
		l.logger.Info(logMsgOperation+action, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (l Ledger) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
