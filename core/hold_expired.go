package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldExpiredEventType is the event type identifier.
const HoldExpiredEventType = "HoldExpired"

// HoldExpired represents when a hold outlives the grace period without the
// item coming back. The periodic sweep raises it; the loan moves to
// AwaitingPayment and a charge is requested under RequestID.
type HoldExpired struct {
	Barcode    BarcodeString
	BorrowerID BorrowerIDString
	LoanID     LoanIDString
	RequestID  RequestIDString
	Amount     decimal.Decimal
	OccurredAt OccurredAtTS
}

// BuildHoldExpired creates a new HoldExpired event.
func BuildHoldExpired(
	barcode BarcodeString,
	borrowerID BorrowerIDString,
	loanID LoanIDString,
	requestID uuid.UUID,
	amount decimal.Decimal,
	occurredAt time.Time,
) HoldExpired {

	return HoldExpired{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID,
		RequestID:  requestID.String(),
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e HoldExpired) EventType() string {
	return HoldExpiredEventType
}

// HasOccurredAt returns when this event occurred.
func (e HoldExpired) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e HoldExpired) IsFailureEvent() bool {
	return false
}
