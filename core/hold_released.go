package core

import (
	"time"
)

// HoldReleasedEventType is the event type identifier.
const HoldReleasedEventType = "HoldReleased"

// HoldReleased represents when a hold is lifted and the loan returns to a plain checkout.
type HoldReleased struct {
	Barcode    BarcodeString
	BorrowerID BorrowerIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

// BuildHoldReleased creates a new HoldReleased event.
func BuildHoldReleased(barcode BarcodeString, borrowerID BorrowerIDString, loanID LoanIDString, occurredAt time.Time) HoldReleased {
	return HoldReleased{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e HoldReleased) EventType() string {
	return HoldReleasedEventType
}

// HasOccurredAt returns when this event occurred.
func (e HoldReleased) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e HoldReleased) IsFailureEvent() bool {
	return false
}
