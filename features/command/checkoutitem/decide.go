package checkoutitem

import (
	"fmt"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

const (
	failureReasonItemNotRegistered   = "no item is registered for this barcode"
	failureReasonItemRetired         = "item is retired"
	failureReasonCheckedOutToAnother = "item is already checked out to another borrower"
	failureReasonAwaitingPayment     = "loan is awaiting payment"
)

// state represents the current state projected from the event history.
type state struct {
	item       core.ItemState
	borrowerID core.BorrowerIDString
}

// Decide implements the business logic to determine whether an item should be checked out.
// This is a pure function with no side effects - it takes the current domain events and a command
// and returns the events that should be appended based on the business rules.
//
// Business Rules:
//
//	GIVEN: An item with Barcode and a borrower with BorrowerID
//	WHEN: CheckOutItem command is received
//	THEN: ItemCheckedOut event is generated
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "item is retired" if the item was retired
//	ERROR: "item is already checked out to another borrower" if another borrower has it
//	ERROR: "loan is awaiting payment" if the previous loan has an unresolved charge
//	IDEMPOTENCY: If the item is already checked out to (or on hold for) this borrower, no event generated
//
// Idempotency is keyed on the borrower: a repeat scan by the holder is the same
// business command and is absorbed without a new event, while a scan by any
// other borrower against the same state is rejected.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	switch s.item {
	case core.NotRegistered:
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)

	case core.Retired:
		return errorDecision(command, failureReasonItemRetired, core.ErrInvalidTransition)

	case core.CheckedOut, core.OnHold:
		if s.borrowerID == command.BorrowerID {
			return core.IdempotentDecision() // this borrower already has the item, no new event
		}

		return errorDecision(command, failureReasonCheckedOutToAnother, core.ErrInvalidTransition)

	case core.AwaitingPayment:
		return errorDecision(command, failureReasonAwaitingPayment, core.ErrInvalidTransition)
	}

	return core.SuccessDecision(
		core.BuildItemCheckedOut(
			command.Barcode,
			command.BorrowerID,
			command.LoanID,
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
		}
	}

	return s
}

func errorDecision(command Command, failureReason string, kind error) core.DecisionResult {
	event := core.BuildTransitionRejected(
		command.Barcode,
		core.RejectedCommandCheckOutItem,
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
