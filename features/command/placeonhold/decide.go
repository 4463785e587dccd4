package placeonhold

import (
	"fmt"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

const (
	failureReasonItemNotRegistered = "no item is registered for this barcode"
	failureReasonItemRetired       = "item is retired"
	failureReasonNoActiveLoan      = "item has no active loan"
	failureReasonAwaitingPayment   = "loan is awaiting payment"
)

// state represents the current state projected from the event history.
type state struct {
	item       core.ItemState
	borrowerID core.BorrowerIDString
	loanID     core.LoanIDString
}

// Decide implements the business logic to determine whether a loan should be placed on hold.
//
// Business Rules:
//
//	GIVEN: An item with Barcode that is checked out
//	WHEN: PlaceOnHold command is received
//	THEN: ItemPlacedOnHold event is generated
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "item is retired" if the item was retired
//	ERROR: "item has no active loan" if the item is available
//	ERROR: "loan is awaiting payment" if a charge was already requested
//	IDEMPOTENCY: If the loan is already on hold, no event generated
//
// The command carries no actor of its own, so a hold request against a loan
// that is already on hold is the same business command replayed and is
// absorbed without a new event rather than rejected.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	switch s.item {
	case core.NotRegistered:
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)

	case core.Retired:
		return errorDecision(command, failureReasonItemRetired, core.ErrInvalidTransition)

	case core.Available:
		return errorDecision(command, failureReasonNoActiveLoan, core.ErrInvalidTransition)

	case core.AwaitingPayment:
		return errorDecision(command, failureReasonAwaitingPayment, core.ErrInvalidTransition)

	case core.OnHold:
		return core.IdempotentDecision() // the loan is already on hold, no new event
	}

	return core.SuccessDecision(
		core.BuildItemPlacedOnHold(
			command.Barcode,
			s.borrowerID,
			s.loanID,
			command.OccurredAt,
		),
	)
}

// project builds the current state by replaying all events from the history.
// The history is already scoped to a single barcode by the event filter.
func project(history core.DomainEvents) state {
	s := state{item: core.ReplayItemState(history)}

	for _, event := range history {
		if e, ok := event.(core.ItemCheckedOut); ok {
			s.borrowerID = e.BorrowerID
			s.loanID = e.LoanID
		}
	}

	return s
}

func errorDecision(command Command, failureReason string, kind error) core.DecisionResult {
	event := core.BuildTransitionRejected(
		command.Barcode,
		core.RejectedCommandPlaceOnHold,
		failureReason,
		command.OccurredAt,
	)

	return core.ErrorDecision(event, fmt.Errorf("%s: %w: %s", event.EventType(), kind, failureReason))
}

// BuildEventFilter creates the filter for querying all lifecycle events of the
// specified item. The full history is needed to replay the item's current state.
func BuildEventFilter(barcode core.BarcodeString) ledger.Filter {
	return ledger.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.ItemRegisteredEventType,
			core.ItemRetiredEventType,
			core.ItemCheckedOutEventType,
			core.ItemPlacedOnHoldEventType,
			core.HoldReleasedEventType,
			core.ItemCheckedInEventType,
			core.LoanMarkedCompleteEventType,
			core.HoldExpiredEventType,
			core.ChargeSucceededEventType,
			core.ChargeAttemptFailedEventType,
			core.LoanFlaggedForReviewEventType,
			core.ChargeWaivedEventType,
		).
		AndAnyPredicateOf(ledger.P("Barcode", barcode)).
		Finalize()
}
