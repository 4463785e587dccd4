package core

import (
	"time"
)

// ChargeWaivedEventType is the event type identifier.
const ChargeWaivedEventType = "ChargeWaived"

// ChargeWaived represents when an operator waives an outstanding charge.
// It closes the active loan with outcome Waived and makes the item available again.
type ChargeWaived struct {
	Barcode    BarcodeString
	LoanID     LoanIDString
	RequestID  RequestIDString
	WaivedBy   string
	OccurredAt OccurredAtTS
}

// BuildChargeWaived creates a new ChargeWaived event.
func BuildChargeWaived(barcode BarcodeString, loanID LoanIDString, requestID RequestIDString, waivedBy string, occurredAt time.Time) ChargeWaived {
	return ChargeWaived{
		Barcode:    barcode,
		LoanID:     loanID,
		RequestID:  requestID,
		WaivedBy:   waivedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ChargeWaived) EventType() string {
	return ChargeWaivedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ChargeWaived) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ChargeWaived) IsFailureEvent() bool {
	return false
}
