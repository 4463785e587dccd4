package recordchargeoutcome

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
	resolvedRequests map[core.RequestIDString]bool
	recordedFailures int
}

// Decide implements the business logic for recording a billing outcome.
//
// Business Rules:
//
//	GIVEN: A loan awaiting payment under RequestID
//	WHEN: RecordChargeOutcome command is received
//	THEN: ChargeSucceeded closes the loan as Charged, or ChargeAttemptFailed
//	      keeps the loan awaiting payment with the attempt count recorded
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "no outstanding charge for this request id" if the request id does not
//	       match the loan currently awaiting payment
//	IDEMPOTENCY: If the request id was already resolved (charged or waived),
//	             no event generated, so late duplicate outcomes are absorbed
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history)

	if s.item == core.NotRegistered {
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)
	}

	if s.resolvedRequests[command.RequestID] {
		return core.IdempotentDecision() // this request already resolved, a late duplicate outcome
	}

	if s.item != core.AwaitingPayment || s.activeRequestID != command.RequestID {
		return errorDecision(command, failureReasonNoOutstanding, core.ErrInvalidTransition)
	}

	if command.Succeeded {
		return core.SuccessDecision(
			core.BuildChargeSucceeded(command.Barcode, s.loanID, command.RequestID, command.OccurredAt),
		)
	}

	if command.Attempts <= s.recordedFailures {
		return core.IdempotentDecision() // this failed attempt was already recorded
	}

	return core.SuccessDecision(
		core.BuildChargeAttemptFailed(command.Barcode, s.loanID, command.RequestID, command.Attempts, command.OccurredAt),
	)
}

// project builds the current state by replaying all events from the history.
// The history is already scoped to a single barcode by the event filter.
func project(history core.DomainEvents) state {
	s := state{
		item:             core.ReplayItemState(history),
		resolvedRequests: make(map[core.RequestIDString]bool),
	}

	for _, event := range history {
		switch e := event.(type) {
		case core.ItemCheckedOut:
			s.loanID = e.LoanID
			s.recordedFailures = 0

		case core.LoanMarkedComplete:
			s.activeRequestID = e.RequestID

		case core.HoldExpired:
			s.activeRequestID = e.RequestID

		case core.ChargeAttemptFailed:
			if e.RequestID == s.activeRequestID {
				s.recordedFailures = e.Attempts
			}

		case core.ChargeSucceeded:
			s.resolvedRequests[e.RequestID] = true

		case core.ChargeWaived:
			s.resolvedRequests[e.RequestID] = true
		}
	}

	return s
}

func errorDecision(command Command, failureReason string, kind error) core.DecisionResult {
	event := core.BuildTransitionRejected(
		command.Barcode,
		core.RejectedCommandRecordChargeOutcome,
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
