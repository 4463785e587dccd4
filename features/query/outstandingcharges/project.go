package outstandingcharges

import (
	"slices"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

// ProjectOutstandingCharges implements the query logic to list unresolved charges.
// This is a pure function with no side effects - it takes the current domain events
// and returns every charge that was requested but has no terminal outcome yet.
//
// Query Logic:
//
//	GIVEN: Charge requests across all items
//	WHEN: OutstandingCharges query is executed
//	THEN: OutstandingCharges struct is returned, oldest request first
//	INCLUDES: failed attempt counts and manual review markers
//	EXCLUDES: charges resolved as succeeded or waived
func ProjectOutstandingCharges(history core.DomainEvents, _ Query) OutstandingCharges {
	outstanding := make(map[core.RequestIDString]*OutstandingCharge)

	for _, event := range history {
		switch e := event.(type) {
		case core.LoanMarkedComplete:
			outstanding[e.RequestID] = &OutstandingCharge{
				Barcode:     e.Barcode,
				BorrowerID:  e.BorrowerID,
				LoanID:      e.LoanID,
				RequestID:   e.RequestID,
				Amount:      e.Amount,
				RequestedAt: e.OccurredAt,
			}

		case core.HoldExpired:
			outstanding[e.RequestID] = &OutstandingCharge{
				Barcode:     e.Barcode,
				BorrowerID:  e.BorrowerID,
				LoanID:      e.LoanID,
				RequestID:   e.RequestID,
				Amount:      e.Amount,
				RequestedAt: e.OccurredAt,
			}

		case core.ChargeAttemptFailed:
			if charge, ok := outstanding[e.RequestID]; ok {
				charge.FailedAttempts = e.Attempts
			}

		case core.LoanFlaggedForReview:
			if charge, ok := outstanding[e.RequestID]; ok {
				charge.ManualReviewRequired = true
				charge.ReviewReason = e.Reason
			}

		case core.ChargeSucceeded:
			delete(outstanding, e.RequestID)

		case core.ChargeWaived:
			delete(outstanding, e.RequestID)
		}
	}

	charges := make([]OutstandingCharge, 0, len(outstanding))
	for _, chargePtr := range outstanding {
		charges = append(charges, *chargePtr)
	}

	slices.SortFunc(charges, func(a, b OutstandingCharge) int {
		return a.RequestedAt.Compare(b.RequestedAt)
	})

	return OutstandingCharges{
		Charges: charges,
		Count:   len(charges),
	}
}

// BuildEventFilter creates the filter for querying billing-relevant events
// across all items.
func BuildEventFilter() ledger.Filter {
	return ledger.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.LoanMarkedCompleteEventType,
			core.HoldExpiredEventType,
			core.ChargeSucceededEventType,
			core.ChargeAttemptFailedEventType,
			core.LoanFlaggedForReviewEventType,
			core.ChargeWaivedEventType,
		).
		Finalize()
}
