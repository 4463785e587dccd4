package itemstate

import (
	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

// ProjectCurrentItemState implements the query logic to determine an item's current state.
// This is a pure function with no side effects - it takes the current domain events and a query
// and returns the projected state.
//
// Query Logic:
//
//	GIVEN: An item with Barcode
//	WHEN: ItemState query is executed
//	THEN: CurrentItemState struct is returned with the replayed lifecycle state
//	INCLUDES: the current holder and loan id while a loan is active
func ProjectCurrentItemState(history core.DomainEvents, query Query) CurrentItemState {
	result := CurrentItemState{
		Barcode: query.Barcode,
		State:   core.ReplayItemState(history).String(),
	}

	for _, event := range history {
		switch e := event.(type) {
		case core.ItemRegistered:
			result.Name = e.Name
			result.Category = e.Category

		case core.ItemCheckedOut:
			result.HolderID = e.BorrowerID
			result.LoanID = e.LoanID

		case core.ItemCheckedIn, core.ChargeSucceeded, core.ChargeWaived:
			result.HolderID = ""
			result.LoanID = ""
		}
	}

	return result
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
