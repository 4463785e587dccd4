package loanhistory

import (
	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

// ProjectLoanHistory implements the query logic to reconstruct all loan episodes of an item.
// This is a pure function with no side effects - it takes the current domain events and a query
// and returns the projected loan records in chronological order.
//
// Query Logic:
//
//	GIVEN: An item with Barcode
//	WHEN: LoanHistory query is executed
//	THEN: LoanHistory struct is returned with one LoanRecord per checkout episode
//	INCLUDES: the ordered transition sequence and terminal outcome of each loan
//	EXCLUDES: rejected transitions, which are audit records outside any loan
func ProjectLoanHistory(history core.DomainEvents, query Query) LoanHistory {
	loans := make([]LoanRecord, 0)

	var open *LoanRecord

	for _, event := range history {
		if event.IsFailureEvent() {
			continue
		}

		switch e := event.(type) {
		case core.ItemCheckedOut:
			loans = append(loans, LoanRecord{
				Barcode:    query.Barcode,
				BorrowerID: e.BorrowerID,
				LoanID:     e.LoanID,
				OpenedAt:   e.OccurredAt,
			})
			open = &loans[len(loans)-1]

		case core.ItemCheckedIn:
			if open != nil {
				open.ClosedAt = e.OccurredAt
				open.Outcome = core.OutcomeReturned
			}

		case core.ChargeSucceeded:
			if open != nil {
				open.ClosedAt = e.OccurredAt
				open.Outcome = core.OutcomeCharged
			}

		case core.ChargeWaived:
			if open != nil {
				open.ClosedAt = e.OccurredAt
				open.Outcome = core.OutcomeWaived
			}
		}

		if open != nil {
			open.Transitions = append(open.Transitions, Transition{
				EventType:  event.EventType(),
				OccurredAt: event.HasOccurredAt(),
			})

			if open.IsClosed() {
				open = nil
			}
		}
	}

	return LoanHistory{
		Barcode: query.Barcode,
		Loans:   loans,
		Count:   len(loans),
	}
}

// BuildEventFilter creates the filter for querying all loan-episode events of
// the specified item. Registry events are excluded; they belong to no loan.
func BuildEventFilter(barcode core.BarcodeString) ledger.Filter {
	return ledger.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
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
