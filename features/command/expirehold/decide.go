package expirehold

import (
	"fmt"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

const (
	failureReasonItemNotRegistered = "no item is registered for this barcode"
	failureReasonItemRetired       = "item is retired"
	failureReasonNoActiveLoan      = "item has no active loan"
	failureReasonNotOnHold         = "loan is not on hold"
)

// state represents the current state projected from the event history.
type state struct {
	item       core.ItemState
	borrowerID core.BorrowerIDString
	loanID     core.LoanIDString
}

// Decide implements the business logic to determine whether a hold should expire into a charge.
//
// Business Rules:
//
//	GIVEN: An item with Barcode whose loan is on hold past the grace period
//	WHEN: ExpireHold command is received
//	THEN: HoldExpired event is generated and a charge is requested under RequestID
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "item is retired" if the item was retired
//	ERROR: "item has no active loan" if the item is available
//	ERROR: "loan is not on hold" if the loan is checked out without a hold
//	IDEMPOTENCY: If the loan is already awaiting payment, no event generated
//
// The grace-period check happens in the sweep that raises this command; by the
// time the command runs the hold may already have been released or returned,
// which the state checks above resolve.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	switch s.item {
	case core.NotRegistered:
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)

	case core.Retired:
		return errorDecision(command, failureReasonItemRetired, core.ErrInvalidTransition)

	case core.Available:
		return errorDecision(command, failureReasonNoActiveLoan, core.ErrInvalidTransition)

	case core.CheckedOut:
		return errorDecision(command, failureReasonNotOnHold, core.ErrInvalidTransition)

	case core.AwaitingPayment:
		return core.IdempotentDecision() // a charge is already requested, keep the original request id
	}

	return core.SuccessDecision(
		core.BuildHoldExpired(
			command.Barcode,
			s.borrowerID,
			s.loanID,
			command.RequestID,
			command.Amount,
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
		core.RejectedCommandExpireHold,
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
