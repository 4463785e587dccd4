package core

import (
	"time"
)

// ItemPlacedOnHoldEventType is the event type identifier.
const ItemPlacedOnHoldEventType = "ItemPlacedOnHold"

// ItemPlacedOnHold represents when a checked-out item's return is put on hold.
type ItemPlacedOnHold struct {
	Barcode    BarcodeString
	BorrowerID BorrowerIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

// BuildItemPlacedOnHold creates a new ItemPlacedOnHold event.
func BuildItemPlacedOnHold(barcode BarcodeString, borrowerID BorrowerIDString, loanID LoanIDString, occurredAt time.Time) ItemPlacedOnHold {
	return ItemPlacedOnHold{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ItemPlacedOnHold) EventType() string {
	return ItemPlacedOnHoldEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemPlacedOnHold) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ItemPlacedOnHold) IsFailureEvent() bool {
	return false
}
