package shell

import (
	"context"

	"github.com/toolroom/loantrack/ledger"
)

// QueriesEvents defines the interface needed by query handlers for ledger read operations.
type QueriesEvents interface {
	Query(ctx context.Context, filter ledger.Filter) (
		ledger.StorableEvents,
		ledger.MaxSequenceNumberUint,
		error,
	)
}

// AppendsEvents defines the interface needed by command handlers for ledger write operations.
type AppendsEvents interface {
	Append(
		ctx context.Context,
		filter ledger.Filter,
		expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
		event ledger.StorableEvent,
		additionalEvents ...ledger.StorableEvent,
	) error
}

// Ledger combines the read and write halves used by command handlers.
type Ledger interface {
	QueriesEvents
	AppendsEvents
}

// Command represents the contract for all command types.
// Each command encapsulates the intent and parameters needed to execute a specific business operation.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler defines the contract for components that process commands with pure business logic.
// Handlers orchestrate the complete command workflow: retrieving events, unmarshaling, business logic, and appending.
// Handlers return HandlerResult containing business outcomes (idempotency) and execution metadata (retry info).
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query represents the contract for all query types.
// Each query encapsulates the intent and parameters needed to retrieve a specific projection.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that process queries and return projections.
// The generic parameters Q and R ensure type safety between queries and their corresponding results.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
