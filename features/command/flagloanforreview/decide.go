package flagloanforreview

import (
	"fmt"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

const (
	failureReasonItemNotRegistered = "no item is registered for this barcode"
	failureReasonNoOutstanding     = "no outstanding charge for this request id"
)

// state represents the current state projected from the event history.
type state struct {
	item             core.ItemState
	loanID           core.LoanIDString
	activeRequestID  core.RequestIDString
	flaggedRequestID core.RequestIDString
}

// Decide implements the business logic for flagging a loan for manual review.
//
// Business Rules:
//
//	GIVEN: A loan awaiting payment whose billing retries are exhausted
//	WHEN: FlagLoanForReview command is received
//	THEN: LoanFlaggedForReview event is generated; the loan stays AwaitingPayment
//	      and no further automatic retries happen
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "no outstanding charge for this request id" if the request id does not
//	       match the loan currently awaiting payment
//	IDEMPOTENCY: If the loan is already flagged under this request id, no event generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	if s.item == core.NotRegistered {
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)
	}

	if s.item != core.AwaitingPayment || s.activeRequestID != command.RequestID {
		return errorDecision(command, failureReasonNoOutstanding, core.ErrInvalidTransition)
	}

	if s.flaggedRequestID == command.RequestID {
		return core.IdempotentDecision() // the loan is already surfaced for review
	}

	return core.SuccessDecision(
		core.BuildLoanFlaggedForReview(
			command.Barcode,
			s.loanID,
			command.RequestID,
			command.Reason,
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

		case core.LoanFlaggedForReview:
			s.flaggedRequestID = e.RequestID
		}
	}

	return s
}

func errorDecision(command Command, failureReason string, kind error) core.DecisionResult {
	event := core.BuildTransitionRejected(
		command.Barcode,
		core.RejectedCommandFlagLoanForReview,
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
