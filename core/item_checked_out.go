package core

import (
	"time"

	"github.com/google/uuid"
)

// ItemCheckedOutEventType is the event type identifier.
const ItemCheckedOutEventType = "ItemCheckedOut"

// ItemCheckedOut represents when an item is checked out to a borrower.
// It opens a new loan episode identified by LoanID.
type ItemCheckedOut struct {
	Barcode    BarcodeString
	BorrowerID BorrowerIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

// BuildItemCheckedOut creates a new ItemCheckedOut event.
func BuildItemCheckedOut(barcode BarcodeString, borrowerID BorrowerIDString, loanID uuid.UUID, occurredAt time.Time) ItemCheckedOut {
	return ItemCheckedOut{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ItemCheckedOut) EventType() string {
	return ItemCheckedOutEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemCheckedOut) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ItemCheckedOut) IsFailureEvent() bool {
	return false
}
