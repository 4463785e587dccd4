package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanMarkedCompleteEventType is the event type identifier.
const LoanMarkedCompleteEventType = "LoanMarkedComplete"

// LoanMarkedComplete represents when a borrower's task is finished but the item
// has not come back. The loan moves to AwaitingPayment and a charge is
// requested from the billing collaborator under RequestID. The RequestID is
// minted exactly once here; retries against the collaborator reuse it.
type LoanMarkedComplete struct {
	Barcode    BarcodeString
	BorrowerID BorrowerIDString
	LoanID     LoanIDString
	RequestID  RequestIDString
	Amount     decimal.Decimal
	OccurredAt OccurredAtTS
}

// BuildLoanMarkedComplete creates a new LoanMarkedComplete event.
func BuildLoanMarkedComplete(
	barcode BarcodeString,
	borrowerID BorrowerIDString,
	loanID LoanIDString,
	requestID uuid.UUID,
	amount decimal.Decimal,
	occurredAt time.Time,
) LoanMarkedComplete {

	return LoanMarkedComplete{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID,
		RequestID:  requestID.String(),
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e LoanMarkedComplete) EventType() string {
	return LoanMarkedCompleteEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanMarkedComplete) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e LoanMarkedComplete) IsFailureEvent() bool {
	return false
}
