package core

// ItemState is the lifecycle state of an inventory item, derived from its
// event history. NotRegistered and Retired exist so callers can distinguish
// "barcode unknown" and "item withdrawn" from a merely available item.
type ItemState int

const (
	// NotRegistered means no ItemRegistered event exists for the barcode.
	NotRegistered ItemState = iota

	// Available means the item is on the shelf with no active loan.
	Available

	// CheckedOut means the item is out with a borrower.
	CheckedOut

	// OnHold means return is delayed but no charge has been triggered yet.
	OnHold

	// AwaitingPayment means a charge has been requested but not yet confirmed.
	AwaitingPayment

	// Retired means the item was withdrawn from the registry.
	Retired
)

// String provides a string representation of ItemState for logging and query results.
func (s ItemState) String() string {
	switch s {
	case NotRegistered:
		return "NotRegistered"
	case Available:
		return "Available"
	case CheckedOut:
		return "CheckedOut"
	case OnHold:
		return "OnHold"
	case AwaitingPayment:
		return "AwaitingPayment"
	case Retired:
		return "Retired"
	default:
		return "Unknown"
	}
}

// LoanOutcome is the terminal outcome of a closed loan episode.
type LoanOutcome string

const (
	// OutcomeReturned means the item came back in time and the loan closed without a charge.
	OutcomeReturned LoanOutcome = "Returned"

	// OutcomeCharged means the billing collaborator confirmed the charge.
	OutcomeCharged LoanOutcome = "Charged"

	// OutcomeWaived means an operator waived the outstanding charge.
	OutcomeWaived LoanOutcome = "Waived"
)

// ReplayItemState folds a barcode's event history into its current lifecycle
// state. It is the canonical transition fold: every event that closes a loan
// (ItemCheckedIn, ChargeSucceeded, ChargeWaived) takes the item back to
// Available for the next loan. Failure events never change state.
//
// The history must already be scoped to a single barcode; events for other
// barcodes would corrupt the fold.
func ReplayItemState(history DomainEvents) ItemState {
	state := NotRegistered

	for _, event := range history {
		if event.IsFailureEvent() {
			continue
		}

		switch event.(type) {
		case ItemRegistered:
			state = Available

		case ItemRetired:
			state = Retired

		case ItemCheckedOut:
			state = CheckedOut

		case ItemPlacedOnHold:
			state = OnHold

		case HoldReleased:
			state = CheckedOut

		case ItemCheckedIn:
			state = Available

		case LoanMarkedComplete, HoldExpired:
			state = AwaitingPayment

		case ChargeAttemptFailed, LoanFlaggedForReview:
			// the loan stays AwaitingPayment

		case ChargeSucceeded, ChargeWaived:
			state = Available
		}
	}

	return state
}
