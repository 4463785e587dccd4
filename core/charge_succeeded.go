package core

import (
	"time"
)

// ChargeSucceededEventType is the event type identifier.
const ChargeSucceededEventType = "ChargeSucceeded"

// ChargeSucceeded represents when the billing collaborator confirmed the charge.
// It closes the active loan with outcome Charged and makes the item available again.
type ChargeSucceeded struct {
	Barcode    BarcodeString
	LoanID     LoanIDString
	RequestID  RequestIDString
	OccurredAt OccurredAtTS
}

// BuildChargeSucceeded creates a new ChargeSucceeded event.
func BuildChargeSucceeded(barcode BarcodeString, loanID LoanIDString, requestID RequestIDString, occurredAt time.Time) ChargeSucceeded {
	return ChargeSucceeded{
		Barcode:    barcode,
		LoanID:     loanID,
		RequestID:  requestID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ChargeSucceeded) EventType() string {
	return ChargeSucceededEventType
}

// HasOccurredAt returns when this event occurred.
func (e ChargeSucceeded) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ChargeSucceeded) IsFailureEvent() bool {
	return false
}
