package core

import (
	"time"
)

// ItemCheckedInEventType is the event type identifier.
const ItemCheckedInEventType = "ItemCheckedIn"

// ItemCheckedIn represents when an item comes back in time.
// It closes the active loan with outcome Returned and makes the item available again.
type ItemCheckedIn struct {
	Barcode    BarcodeString
	BorrowerID BorrowerIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

// BuildItemCheckedIn creates a new ItemCheckedIn event.
func BuildItemCheckedIn(barcode BarcodeString, borrowerID BorrowerIDString, loanID LoanIDString, occurredAt time.Time) ItemCheckedIn {
	return ItemCheckedIn{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ItemCheckedIn) EventType() string {
	return ItemCheckedInEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemCheckedIn) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ItemCheckedIn) IsFailureEvent() bool {
	return false
}
