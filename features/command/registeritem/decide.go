package registeritem

import (
	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

// Decide implements the business logic to determine whether an item should be registered.
//
// Business Rules:
//
//	GIVEN: A barcode with display name and category
//	WHEN: RegisterItem command is received
//	THEN: ItemRegistered event is generated
//	IDEMPOTENCY: If the barcode is already registered and not retired, no event generated
//
// A retired barcode may be registered again, which puts the item back into circulation.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	itemState := core.ReplayItemState(history)

	if itemState != core.NotRegistered && itemState != core.Retired {
		return core.IdempotentDecision() // the barcode is already registered, no new event
	}

	return core.SuccessDecision(
		core.BuildItemRegistered(
			command.Barcode,
			command.Name,
			command.Category,
			command.OccurredAt,
		),
	)
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
