package outstandingcharges

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
)

// OutstandingCharge represents one charge awaiting a terminal billing outcome.
type OutstandingCharge struct {
	Barcode              core.BarcodeString
	BorrowerID           core.BorrowerIDString
	LoanID               core.LoanIDString
	RequestID            core.RequestIDString
	Amount               decimal.Decimal
	RequestedAt          time.Time
	FailedAttempts       int
	ManualReviewRequired bool
	ReviewReason         string
}

// OutstandingCharges represents the query result listing all unresolved charges.
type OutstandingCharges struct {
	Charges []OutstandingCharge
	Count   int
}
