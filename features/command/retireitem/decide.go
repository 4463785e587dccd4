package retireitem

import (
	"fmt"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

const (
	failureReasonItemNotRegistered = "no item is registered for this barcode"
	failureReasonOpenLoan          = "item has an open loan"
)

// Decide implements the business logic to determine whether an item should be retired.
//
// Business Rules:
//
//	GIVEN: A registered item with Barcode
//	WHEN: RetireItem command is received
//	THEN: ItemRetired event is generated
//	ERROR: "no item is registered for this barcode" if the barcode is unknown
//	ERROR: "item has an open loan" if the item is checked out, on hold, or awaiting payment
//	IDEMPOTENCY: If the item is already retired, no event generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	switch core.ReplayItemState(history) {
	case core.NotRegistered:
		return errorDecision(command, failureReasonItemNotRegistered, core.ErrItemNotFound)

	case core.Retired:
		return core.IdempotentDecision() // the item is already retired, no new event

	case core.CheckedOut, core.OnHold, core.AwaitingPayment:
		return errorDecision(command, failureReasonOpenLoan, core.ErrInvalidTransition)
	}

	return core.SuccessDecision(
		core.BuildItemRetired(command.Barcode, command.OccurredAt),
	)
}

func errorDecision(command Command, failureReason string, kind error) core.DecisionResult {
	event := core.BuildTransitionRejected(
		command.Barcode,
		core.RejectedCommandRetireItem,
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
