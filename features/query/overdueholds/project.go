package overdueholds

import (
	"slices"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

// ProjectOverdueHolds implements the query logic to find stale holds.
// This is a pure function with no side effects - it takes the current domain events
// and returns every item whose hold is still active and started at or before
// the cutoff in the query.
//
// Query Logic:
//
//	GIVEN: Hold lifecycle events across all items
//	WHEN: OverdueHolds query is executed with a cutoff
//	THEN: OverdueHolds struct is returned, oldest hold first
//	EXCLUDES: holds that were released, checked in, or already expired
func ProjectOverdueHolds(history core.DomainEvents, query Query) OverdueHolds {
	activeHolds := make(map[core.BarcodeString]OverdueHold)

	for _, event := range history {
		switch e := event.(type) {
		case core.ItemPlacedOnHold:
			activeHolds[e.Barcode] = OverdueHold{
				Barcode:    e.Barcode,
				BorrowerID: e.BorrowerID,
				LoanID:     e.LoanID,
				HeldSince:  e.OccurredAt,
			}

		case core.HoldReleased:
			delete(activeHolds, e.Barcode)

		case core.ItemCheckedIn:
			delete(activeHolds, e.Barcode)

		case core.HoldExpired:
			delete(activeHolds, e.Barcode)
		}
	}

	holds := make([]OverdueHold, 0, len(activeHolds))
	for _, hold := range activeHolds {
		if hold.HeldSince.After(query.HeldSinceBefore) {
			continue
		}

		holds = append(holds, hold)
	}

	slices.SortFunc(holds, func(a, b OverdueHold) int {
		return a.HeldSince.Compare(b.HeldSince)
	})

	return OverdueHolds{
		Holds: holds,
		Count: len(holds),
	}
}

// BuildEventFilter creates the filter for querying hold lifecycle events
// across all items.
func BuildEventFilter() ledger.Filter {
	return ledger.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.ItemPlacedOnHoldEventType,
			core.HoldReleasedEventType,
			core.ItemCheckedInEventType,
			core.HoldExpiredEventType,
		).
		Finalize()
}
