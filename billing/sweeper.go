package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/expirehold"
	"github.com/toolroom/loantrack/features/query/overdueholds"
	"github.com/toolroom/loantrack/shell"
)

const (
	defaultGracePeriod   = 72 * time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// Sweeper expires holds that outlived the grace period. It runs the overdue
// holds query on an interval and raises an ExpireHold command per stale hold;
// there are no per-item timers. A hold released between the query and the
// command is rejected by the state machine and skipped here.
type Sweeper struct {
	overdue overdueholds.QueryHandler
	expire  expirehold.CommandHandler

	gracePeriod   time.Duration
	sweepInterval time.Duration
	defaultCharge decimal.Decimal
	now           func() time.Time

	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// SweeperOption defines a functional option for configuring the Sweeper.
type SweeperOption func(*Sweeper)

// WithGracePeriod sets how long a hold may stand before it expires.
func WithGracePeriod(period time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if period > 0 {
			s.gracePeriod = period
		}
	}
}

// WithSweepInterval sets how often the sweep runs.
func WithSweepInterval(interval time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithSweeperClock overrides the time source, for tests.
func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.now = now
	}
}

// WithSweeperContextualLogging sets the contextual logger for the Sweeper.
func WithSweeperContextualLogging(logger shell.ContextualLogger) SweeperOption {
	return func(s *Sweeper) {
		s.contextualLogger = logger
	}
}

// WithSweeperLogging sets the basic logger for the Sweeper.
func WithSweeperLogging(logger shell.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// NewSweeper creates a Sweeper over the given ledger. The default charge
// amount is attached to every hold expiry.
func NewSweeper(eventLedger shell.Ledger, defaultCharge decimal.Decimal, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		overdue:       overdueholds.NewQueryHandler(eventLedger),
		expire:        expirehold.NewCommandHandler(eventLedger),
		gracePeriod:   defaultGracePeriod,
		sweepInterval: defaultSweepInterval,
		defaultCharge: defaultCharge,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes sweep cycles until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logError(ctx, "hold sweep failed", err)
			}
		}
	}
}

// SweepOnce runs a single sweep: find stale holds, expire each one.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	cutoff := s.now().Add(-s.gracePeriod)

	result, err := s.overdue.Handle(ctx, overdueholds.BuildQuery(cutoff))
	if err != nil {
		return err
	}

	var errs []error

	for _, hold := range result.Holds {
		cmd := expirehold.BuildCommand(hold.Barcode, uuid.New(), s.defaultCharge, s.now())

		_, expireErr := s.expire.Handle(ctx, cmd)
		if expireErr == nil {
			continue
		}

		// The hold was released or the item returned between query and
		// command; the ledger re-validated and rejected the expiry.
		if errors.Is(expireErr, core.ErrInvalidTransition) || errors.Is(expireErr, core.ErrItemNotFound) {
			s.logInfo(ctx, "stale hold resolved before expiry", shell.LogAttrBarcode, hold.Barcode)
			continue
		}

		errs = append(errs, expireErr)
	}

	return errors.Join(errs...)
}

func (s *Sweeper) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Sweeper) logError(ctx context.Context, msg string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, shell.LogAttrError, err.Error())
	} else if s.logger != nil {
		s.logger.Error(msg, shell.LogAttrError, err.Error())
	}
}
