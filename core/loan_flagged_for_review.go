package core

import (
	"time"
)

// LoanFlaggedForReviewEventType is the event type identifier.
const LoanFlaggedForReviewEventType = "LoanFlaggedForReview"

// LoanFlaggedForReview represents when automatic charge retries are exhausted.
// The loan stays AwaitingPayment and is surfaced for manual intervention
// instead of being silently abandoned.
type LoanFlaggedForReview struct {
	Barcode    BarcodeString
	LoanID     LoanIDString
	RequestID  RequestIDString
	Reason     string
	OccurredAt OccurredAtTS
}

// BuildLoanFlaggedForReview creates a new LoanFlaggedForReview event.
func BuildLoanFlaggedForReview(barcode BarcodeString, loanID LoanIDString, requestID RequestIDString, reason string, occurredAt time.Time) LoanFlaggedForReview {
	return LoanFlaggedForReview{
		Barcode:    barcode,
		LoanID:     loanID,
		RequestID:  requestID,
		Reason:     reason,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e LoanFlaggedForReview) EventType() string {
	return LoanFlaggedForReviewEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanFlaggedForReview) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event records an operator-visible marker, not a rejected command.
func (e LoanFlaggedForReview) IsFailureEvent() bool {
	return false
}
