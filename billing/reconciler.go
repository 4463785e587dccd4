package billing

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/toolroom/loantrack/features/command/flagloanforreview"
	"github.com/toolroom/loantrack/features/command/recordchargeoutcome"
	"github.com/toolroom/loantrack/features/query/outstandingcharges"
	"github.com/toolroom/loantrack/shell"
)

const (
	defaultMaxAttempts    = 5
	defaultBaseDelay      = 30 * time.Second
	defaultPollInterval   = 15 * time.Second
	defaultDueBatchSize   = 100
	reviewReasonExhausted = "charge attempts exhausted"
	backoffJitterFactor   = 0.3
)

// Reconciler drives charge requests to a terminal outcome, off the scan path.
//
// Each cycle it derives queue rows from the ledger's outstanding charges,
// issues due charge requests against the collaborator, polls their status, and
// feeds outcomes back into the state machine as commands. Failed charges are
// retried with exponential backoff until MaxAttempts, then flagged for manual
// review; the loan stays AwaitingPayment either way.
type Reconciler struct {
	queue         Queue
	collaborator  Collaborator
	charges       outstandingcharges.QueryHandler
	recordOutcome recordchargeoutcome.CommandHandler
	flagReview    flagloanforreview.CommandHandler

	maxAttempts  int
	baseDelay    time.Duration
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time

	metricsCollector shell.MetricsCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// ReconcilerOption defines a functional option for configuring the Reconciler.
type ReconcilerOption func(*Reconciler)

// WithMaxAttempts sets the charge attempt limit before manual review.
func WithMaxAttempts(attempts int) ReconcilerOption {
	return func(r *Reconciler) {
		if attempts > 0 {
			r.maxAttempts = attempts
		}
	}
}

// WithBaseDelay sets the base delay for charge retry backoff.
func WithBaseDelay(delay time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if delay > 0 {
			r.baseDelay = delay
		}
	}
}

// WithPollInterval sets how often the reconciler runs a cycle.
func WithPollInterval(interval time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// WithReconcilerMetrics sets the metrics collector for the Reconciler.
func WithReconcilerMetrics(collector shell.MetricsCollector) ReconcilerOption {
	return func(r *Reconciler) {
		r.metricsCollector = collector
	}
}

// WithReconcilerContextualLogging sets the contextual logger for the Reconciler.
func WithReconcilerContextualLogging(logger shell.ContextualLogger) ReconcilerOption {
	return func(r *Reconciler) {
		r.contextualLogger = logger
	}
}

// WithReconcilerLogging sets the basic logger for the Reconciler.
func WithReconcilerLogging(logger shell.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a Reconciler wired to the given ledger, queue and collaborator.
func NewReconciler(
	eventLedger shell.Ledger,
	queue Queue,
	collaborator Collaborator,
	opts ...ReconcilerOption,
) *Reconciler {
	r := &Reconciler{
		queue:         queue,
		collaborator:  collaborator,
		charges:       outstandingcharges.NewQueryHandler(eventLedger),
		recordOutcome: recordchargeoutcome.NewCommandHandler(eventLedger),
		flagReview:    flagloanforreview.NewCommandHandler(eventLedger),
		maxAttempts:   defaultMaxAttempts,
		baseDelay:     defaultBaseDelay,
		pollInterval:  defaultPollInterval,
		batchSize:     defaultDueBatchSize,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes reconcile cycles until the context is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.ReconcileOnce(ctx); err != nil {
				r.logError(ctx, "reconcile cycle failed", err)
			}
		}
	}
}

// ReconcileOnce runs a single reconcile cycle: derive queue rows from the
// ledger, then work through all due requests.
func (r *Reconciler) ReconcileOnce(ctx context.Context) error {
	if err := r.enqueueOutstanding(ctx); err != nil {
		return err
	}

	due, err := r.queue.Due(ctx, r.now(), r.batchSize)
	if err != nil {
		return err
	}

	var errs []error

	for _, request := range due {
		if err := r.processRequest(ctx, request); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// enqueueOutstanding derives queue rows from the ledger. The insert is
// idempotent on request id, so replaying already-known charges is harmless.
func (r *Reconciler) enqueueOutstanding(ctx context.Context) error {
	result, err := r.charges.Handle(ctx, outstandingcharges.BuildQuery())
	if err != nil {
		return err
	}

	for _, charge := range result.Charges {
		if charge.ManualReviewRequired {
			continue
		}

		enqueueErr := r.queue.Enqueue(ctx, Request{
			RequestID:     charge.RequestID,
			Barcode:       charge.Barcode,
			LoanID:        charge.LoanID,
			Amount:        charge.Amount,
			Attempts:      charge.FailedAttempts,
			NextAttemptAt: r.now(),
			Status:        requestStatusPending,
		})
		if enqueueErr != nil {
			return enqueueErr
		}
	}

	return nil
}

func (r *Reconciler) processRequest(ctx context.Context, request Request) error {
	r.recordChargeAttempt(ctx, request)

	if err := r.collaborator.RequestCharge(ctx, request.LoanID, request.Amount, request.RequestID); err != nil {
		// The collaborator was unreachable; no attempt was consumed.
		r.logError(ctx, "charge request not acknowledged", err)

		return r.queue.Postpone(ctx, request.RequestID, r.now().Add(r.baseDelay))
	}

	status, err := r.collaborator.QueryStatus(ctx, request.RequestID)
	if err != nil {
		r.logError(ctx, "charge status poll failed", err)

		return r.queue.Postpone(ctx, request.RequestID, r.now().Add(r.baseDelay))
	}

	switch status {
	case ChargeStatusSucceeded:
		return r.handleSucceeded(ctx, request)
	case ChargeStatusFailed:
		return r.handleFailed(ctx, request)
	case ChargeStatusPending:
		return r.queue.Postpone(ctx, request.RequestID, r.now().Add(r.pollInterval))
	default:
		return r.queue.Postpone(ctx, request.RequestID, r.now().Add(r.baseDelay))
	}
}

func (r *Reconciler) handleSucceeded(ctx context.Context, request Request) error {
	cmd := recordchargeoutcome.BuildCommand(request.Barcode, request.RequestID, true, request.Attempts+1, r.now())

	if _, err := r.recordOutcome.Handle(ctx, cmd); err != nil {
		return err
	}

	return r.queue.MarkSucceeded(ctx, request.RequestID)
}

func (r *Reconciler) handleFailed(ctx context.Context, request Request) error {
	attempts := request.Attempts + 1

	cmd := recordchargeoutcome.BuildCommand(request.Barcode, request.RequestID, false, attempts, r.now())
	if _, err := r.recordOutcome.Handle(ctx, cmd); err != nil {
		return err
	}

	if attempts < r.maxAttempts {
		return r.queue.RecordFailure(ctx, request.RequestID, attempts, r.now().Add(backoffDelay(r.baseDelay, attempts)))
	}

	flagCmd := flagloanforreview.BuildCommand(request.Barcode, request.RequestID, reviewReasonExhausted, r.now())
	if _, err := r.flagReview.Handle(ctx, flagCmd); err != nil {
		return err
	}

	r.recordManualReview(ctx, request)

	return r.queue.MarkManualReview(ctx, request.RequestID)
}

// backoffDelay computes the jittered exponential delay before the next charge
// attempt: baseDelay * 2^attempts plus up to 30% jitter.
func backoffDelay(baseDelay time.Duration, attempts int) time.Duration {
	delay := baseDelay * time.Duration(1<<attempts)
	jitter := rand.Float64() * float64(delay) * backoffJitterFactor //nolint:gosec //math/rand is sufficient for jitter

	return delay + time.Duration(jitter)
}

func (r *Reconciler) recordChargeAttempt(ctx context.Context, request Request) {
	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		shell.LogAttrBarcode:   request.Barcode,
		shell.LogAttrRequestID: request.RequestID,
	}

	if contextualCollector, ok := r.metricsCollector.(shell.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, shell.BillingChargeAttemptsMetric, labels)
	} else {
		r.metricsCollector.IncrementCounter(shell.BillingChargeAttemptsMetric, labels)
	}
}

func (r *Reconciler) recordManualReview(ctx context.Context, request Request) {
	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		shell.LogAttrBarcode:   request.Barcode,
		shell.LogAttrRequestID: request.RequestID,
	}

	if contextualCollector, ok := r.metricsCollector.(shell.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, shell.BillingManualReviewMetric, labels)
	} else {
		r.metricsCollector.IncrementCounter(shell.BillingManualReviewMetric, labels)
	}
}

func (r *Reconciler) logError(ctx context.Context, msg string, err error) {
	if r.contextualLogger != nil {
		r.contextualLogger.ErrorContext(ctx, msg, shell.LogAttrError, err.Error())
	} else if r.logger != nil {
		r.logger.Error(msg, shell.LogAttrError, err.Error())
	}
}
