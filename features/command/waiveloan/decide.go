package waiveloan

import (
	"fmt"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

const (
	failureReasonItemNotRegistered = "no item is registered for this barcode"
	failureReasonNotAwaiting       = "loan is not awaiting payment"
)

// state represents the current state projected from the event history.
type state struct {
	item            core.ItemState
	loanID          core.LoanIDString
	activeRequestID core.RequestIDString
}

// Decide implements the business logic for waiving an outstanding charge.
//
// Business Rules:
//
//	GIVEN: A loan awaiting payment, typically after billing retries were exhausted
//	WHEN: WaiveLoan command is received
//	THEN: ChargeWaived event is generated and the loan closes as Waived
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "loan is not awaiting payment" if there is no outstanding charge
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	if s.item == core.NotRegistered {
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)
	}

	if s.item != core.AwaitingPayment {
		return errorDecision(command, failureReasonNotAwaiting, core.ErrInvalidTransition)
	}

	return core.SuccessDecision(
		core.BuildChargeWaived(
			command.Barcode,
			s.loanID,
			s.activeRequestID,
			command.WaivedBy,
			command.OccurredAt,
		),
	)
}

// project builds the current state by replaying all events from the history.
// The history is already scoped to a single barcode by the event filter.
func project(history core.DomainEvents) state {
	s := state{item: core.ReplayItemState(history)}

	for _, event := range history {
		switch e := event.(type) {
		case core.ItemCheckedOut:
			s.loanID = e.LoanID

		case core.LoanMarkedComplete:
			s.activeRequestID = e.RequestID

		case core.HoldExpired:
			s.activeRequestID = e.RequestID
		}
	}

	return s
}

func errorDecision(command Command, failureReason string, kind error) core.DecisionResult {
	event := core.BuildTransitionRejected(
		command.Barcode,
		core.RejectedCommandWaiveLoan,
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
