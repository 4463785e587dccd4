package postgresengine

import (
	"context"
	"fmt"
	"time"

	"github.com/toolroom/loantrack/ledger"
)

const (
	metricQueryDuration        = "ledger_query_duration_seconds"
	metricAppendDuration       = "ledger_append_duration_seconds"
	metricEventsQueried        = "ledger_events_queried"
	metricEventsAppended       = "ledger_events_appended"
	metricDatabaseErrors       = "ledger_database_errors_total"
	metricConcurrencyConflicts = "ledger_concurrency_conflicts_total"

	spanNameQuery  = "ledger.query"
	spanNameAppend = "ledger.append"

	spanAttrOperation    = "operation"
	spanAttrStatus       = "status"
	spanAttrEventCount   = "event_count"
	spanAttrMaxSequence  = "max_sequence"
	spanAttrExpectedSeq  = "expected_sequence"
	spanAttrRowsAffected = "rows_affected"
	spanAttrErrorType    = "error_type"
	spanAttrDurationMS   = "duration_ms"

	operationQuery  = "query"
	operationAppend = "append"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"

	errorTypeBuildQuery = "build_query"
	errorTypeDatabase   = "database"
	errorTypeScanRow    = "scan_row"
	errorTypeConflict   = "concurrency_conflict"
)

// startQuerySpan starts a tracing span for a query operation if tracing is configured.
func (l Ledger) startQuerySpan(ctx context.Context) (context.Context, ledger.SpanContext) {
	if l.tracingCollector == nil {
		return ctx, nil
	}

	return l.tracingCollector.StartSpan(ctx, spanNameQuery, map[string]string{
		spanAttrOperation: operationQuery,
	})
}

// startAppendSpan starts a tracing span for an append operation if tracing is configured.
func (l Ledger) startAppendSpan(
	ctx context.Context,
	eventCount int,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (context.Context, ledger.SpanContext) {

	if l.tracingCollector == nil {
		return ctx, nil
	}

	return l.tracingCollector.StartSpan(ctx, spanNameAppend, map[string]string{
		spanAttrOperation:   operationAppend,
		spanAttrEventCount:  fmt.Sprintf("%d", eventCount),
		spanAttrExpectedSeq: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	})
}

func (l Ledger) finishSpan(span ledger.SpanContext, status string, attrs map[string]string) {
	if l.tracingCollector == nil || span == nil {
		return
	}

	l.tracingCollector.FinishSpan(span, status, attrs)
}

// recordDurationMetric records an operation duration, using the context-aware
// collector method when the collector supports it.
func (l Ledger) recordDurationMetric(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation string,
	status string,
) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    status,
	}

	if contextualCollector, ok := l.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		l.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

func (l Ledger) recordValueMetric(
	ctx context.Context,
	metricName string,
	value float64,
	operation string,
	status string,
) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    status,
	}

	if contextualCollector, ok := l.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		l.metricsCollector.RecordValue(metricName, value, labels)
	}
}

func (l Ledger) recordErrorMetric(ctx context.Context, operation string, errorType string) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		spanAttrStatus:    statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := l.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		l.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

func (l Ledger) recordConflictMetric(ctx context.Context) {
	if l.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operationAppend,
		"conflict_type":   "concurrency",
	}

	if contextualCollector, ok := l.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricConcurrencyConflicts, labels)
	} else {
		l.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
	}
}

// observeQuerySuccess records metrics and finishes the span for a successful query.
func (l Ledger) observeQuerySuccess(
	ctx context.Context,
	span ledger.SpanContext,
	eventCount int,
	maxSequenceNumber ledger.MaxSequenceNumberUint,
	duration time.Duration,
) {
	l.recordDurationMetric(ctx, metricQueryDuration, duration, operationQuery, statusSuccess)
	l.recordValueMetric(ctx, metricEventsQueried, float64(eventCount), operationQuery, statusSuccess)

	l.finishSpan(span, statusSuccess, map[string]string{
		spanAttrEventCount:  fmt.Sprintf("%d", eventCount),
		spanAttrMaxSequence: fmt.Sprintf("%d", maxSequenceNumber),
		spanAttrDurationMS:  fmt.Sprintf("%.2f", l.durationToMilliseconds(duration)),
	})
}

// observeQueryError records metrics and finishes the span for a failed query.
func (l Ledger) observeQueryError(
	ctx context.Context,
	span ledger.SpanContext,
	errorType string,
	duration time.Duration,
) {
	l.recordDurationMetric(ctx, metricQueryDuration, duration, operationQuery, statusError)
	l.recordErrorMetric(ctx, operationQuery, errorType)

	l.finishSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// observeAppendSuccess records metrics and finishes the span for a successful append.
func (l Ledger) observeAppendSuccess(
	ctx context.Context,
	span ledger.SpanContext,
	rowsAffected int64,
	duration time.Duration,
) {
	l.recordDurationMetric(ctx, metricAppendDuration, duration, operationAppend, statusSuccess)
	l.recordValueMetric(ctx, metricEventsAppended, float64(rowsAffected), operationAppend, statusSuccess)

	l.finishSpan(span, statusSuccess, map[string]string{
		spanAttrRowsAffected: fmt.Sprintf("%d", rowsAffected),
		spanAttrDurationMS:   fmt.Sprintf("%.2f", l.durationToMilliseconds(duration)),
	})
}

// observeAppendError records metrics and finishes the span for a failed append.
func (l Ledger) observeAppendError(
	ctx context.Context,
	span ledger.SpanContext,
	errorType string,
	duration time.Duration,
) {
	l.recordDurationMetric(ctx, metricAppendDuration, duration, operationAppend, statusError)
	l.recordErrorMetric(ctx, operationAppend, errorType)

	l.finishSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// observeAppendConflict records metrics and finishes the span when the
// expected-sequence guard detects a concurrent writer.
func (l Ledger) observeAppendConflict(
	ctx context.Context,
	span ledger.SpanContext,
	duration time.Duration,
) {
	l.recordDurationMetric(ctx, metricAppendDuration, duration, operationAppend, statusConflict)
	l.recordConflictMetric(ctx)

	l.finishSpan(span, statusConflict, map[string]string{spanAttrErrorType: errorTypeConflict})
}

// logOperationContext logs operational information with trace correlation when
// a contextual logger is configured.
func (l Ledger) logOperationContext(ctx context.Context, action string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logErrorContext logs error information with trace correlation when a
// contextual logger is configured.
func (l Ledger) logErrorContext(ctx context.Context, message string, err error, args ...any) {
	if l.contextualLogger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		l.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}
