package core

import (
	"time"
)

// ChargeAttemptFailedEventType is the event type identifier.
const ChargeAttemptFailedEventType = "ChargeAttemptFailed"

// ChargeAttemptFailed represents when one charge attempt against the billing
// collaborator came back failed. The loan stays AwaitingPayment; the
// reconciler schedules a retry with the same RequestID.
type ChargeAttemptFailed struct {
	Barcode    BarcodeString
	LoanID     LoanIDString
	RequestID  RequestIDString
	Attempts   int
	OccurredAt OccurredAtTS
}

// BuildChargeAttemptFailed creates a new ChargeAttemptFailed event.
func BuildChargeAttemptFailed(barcode BarcodeString, loanID LoanIDString, requestID RequestIDString, attempts int, occurredAt time.Time) ChargeAttemptFailed {
	return ChargeAttemptFailed{
		Barcode:    barcode,
		LoanID:     loanID,
		RequestID:  requestID,
		Attempts:   attempts,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ChargeAttemptFailed) EventType() string {
	return ChargeAttemptFailedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ChargeAttemptFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event records a billing outcome, not a rejected command.
func (e ChargeAttemptFailed) IsFailureEvent() bool {
	return false
}
