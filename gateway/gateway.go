package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/checkinitem"
	"github.com/toolroom/loantrack/features/command/checkoutitem"
	"github.com/toolroom/loantrack/features/command/markloancomplete"
	"github.com/toolroom/loantrack/features/command/placeonhold"
	"github.com/toolroom/loantrack/features/command/releasehold"
	"github.com/toolroom/loantrack/features/query/itemstate"
	"github.com/toolroom/loantrack/shell"
)

const defaultDedupWindowSize = 1024

// Gateway validates scan events, absorbs redelivered tokens, and routes each
// scan to its command handler. Per-barcode serialization comes from the
// ledger's optimistic concurrency, so the gateway itself holds no item locks.
type Gateway struct {
	checkOut     checkoutitem.CommandHandler
	checkIn      checkinitem.CommandHandler
	placeOnHold  placeonhold.CommandHandler
	releaseHold  releasehold.CommandHandler
	markComplete markloancomplete.CommandHandler
	itemState    itemstate.QueryHandler

	window        *dedupWindow
	defaultCharge decimal.Decimal

	metricsCollector shell.MetricsCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// Option defines a functional option for configuring the Gateway.
type Option func(*Gateway)

// WithDedupWindowSize sets the capacity of the idempotency-token window.
func WithDedupWindowSize(size int) Option {
	return func(g *Gateway) {
		if size > 0 {
			g.window = newDedupWindow(size)
		}
	}
}

// WithMetrics sets the metrics collector for the Gateway.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(g *Gateway) {
		g.metricsCollector = collector
	}
}

// WithContextualLogging sets the contextual logger for the Gateway.
func WithContextualLogging(logger shell.ContextualLogger) Option {
	return func(g *Gateway) {
		g.contextualLogger = logger
	}
}

// WithLogging sets the basic logger for the Gateway.
func WithLogging(logger shell.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a Gateway wired to command handlers over the given ledger.
// The default charge amount is attached to MarkComplete scans; item-specific
// pricing is resolved upstream of the gateway when present.
func NewGateway(eventLedger shell.Ledger, defaultCharge decimal.Decimal, opts ...Option) *Gateway {
	g := &Gateway{
		checkOut:      checkoutitem.NewCommandHandler(eventLedger),
		checkIn:       checkinitem.NewCommandHandler(eventLedger),
		placeOnHold:   placeonhold.NewCommandHandler(eventLedger),
		releaseHold:   releasehold.NewCommandHandler(eventLedger),
		markComplete:  markloancomplete.NewCommandHandler(eventLedger),
		itemState:     itemstate.NewQueryHandler(eventLedger),
		window:        newDedupWindow(defaultDedupWindowSize),
		defaultCharge: defaultCharge,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Handle processes one scan: validate, dedup, dispatch, acknowledge.
// The ledger append happens inside the command handler before Handle returns,
// so an acknowledged scan is always durable. Rejected transitions surface as
// errors carrying core.ErrItemNotFound or core.ErrInvalidTransition; the
// rejection itself is already persisted as an audit event by the handler.
func (g *Gateway) Handle(ctx context.Context, scan ScanEvent) (ScanResult, error) {
	if err := scan.validate(); err != nil {
		return ScanResult{}, err
	}

	if scan.IdempotencyToken != "" {
		if cached, ok := g.window.Lookup(scan.IdempotencyToken); ok {
			g.recordDuplicateScan(ctx, scan)

			if cached.err != nil {
				return ScanResult{}, cached.err
			}

			result := cached.result
			result.Duplicate = true

			return result, nil
		}
	}

	handlerResult, err := g.dispatch(ctx, scan)
	if err != nil {
		// Business rejections are final, so a redelivered token must not
		// hit the ledger and append a second audit event. Transient
		// failures stay uncached and retry on redelivery.
		if scan.IdempotencyToken != "" && isBusinessRejection(err) {
			g.window.Remember(scan.IdempotencyToken, scanOutcome{err: err})
		}

		return ScanResult{}, err
	}

	stateResult, err := g.itemState.Handle(ctx, itemstate.BuildQuery(scan.Barcode))
	if err != nil {
		return ScanResult{}, err
	}

	result := ScanResult{
		Barcode:    scan.Barcode,
		State:      stateResult.State,
		Idempotent: handlerResult.Idempotent,
	}

	if scan.IdempotencyToken != "" {
		g.window.Remember(scan.IdempotencyToken, scanOutcome{result: result})
	}

	return result, nil
}

func isBusinessRejection(err error) bool {
	return errors.Is(err, core.ErrInvalidTransition) || errors.Is(err, core.ErrItemNotFound)
}

func (g *Gateway) dispatch(ctx context.Context, scan ScanEvent) (shell.HandlerResult, error) {
	switch scan.Kind {
	case ScanCheckOut:
		cmd := checkoutitem.BuildCommand(scan.Barcode, scan.BorrowerID, uuid.New(), scan.OccurredAt)
		return g.checkOut.Handle(ctx, cmd)

	case ScanCheckIn:
		cmd := checkinitem.BuildCommand(scan.Barcode, scan.OccurredAt)
		return g.checkIn.Handle(ctx, cmd)

	case ScanPlaceOnHold:
		cmd := placeonhold.BuildCommand(scan.Barcode, scan.OccurredAt)
		return g.placeOnHold.Handle(ctx, cmd)

	case ScanReleaseHold:
		cmd := releasehold.BuildCommand(scan.Barcode, scan.OccurredAt)
		return g.releaseHold.Handle(ctx, cmd)

	case ScanMarkComplete:
		cmd := markloancomplete.BuildCommand(scan.Barcode, uuid.New(), g.defaultCharge, scan.OccurredAt)
		return g.markComplete.Handle(ctx, cmd)

	default:
		return shell.HandlerResult{}, ErrUnknownScanKind
	}
}

func (g *Gateway) recordDuplicateScan(ctx context.Context, scan ScanEvent) {
	if g.metricsCollector != nil {
		labels := map[string]string{
			"scan_kind":          string(scan.Kind),
			shell.LogAttrBarcode: scan.Barcode,
		}

		if contextualCollector, ok := g.metricsCollector.(shell.ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, shell.GatewayDuplicateScansMetric, labels)
		} else {
			g.metricsCollector.IncrementCounter(shell.GatewayDuplicateScansMetric, labels)
		}
	}

	args := []any{
		shell.LogAttrBarcode, scan.Barcode,
		"scan_kind", string(scan.Kind),
		"idempotency_token", scan.IdempotencyToken,
	}

	if g.contextualLogger != nil {
		g.contextualLogger.InfoContext(ctx, "duplicate scan absorbed", args...)
	} else if g.logger != nil {
		g.logger.Info("duplicate scan absorbed", args...)
	}
}
