package loanhistory

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

// Transition is one recorded step of a loan episode, in append order.
type Transition struct {
	EventType  string
	OccurredAt time.Time
}

// LoanRecord represents one checkout-to-close episode of an item.
// ClosedAt is zero and Outcome empty while the loan is still open.
type LoanRecord struct {
	Barcode     core.BarcodeString
	BorrowerID  core.BorrowerIDString
	LoanID      core.LoanIDString
	OpenedAt    time.Time
	ClosedAt    time.Time
	Outcome     core.LoanOutcome
	Transitions []Transition
}

// IsClosed returns true once the loan reached a terminal outcome.
func (r LoanRecord) IsClosed() bool {
	return r.Outcome != ""
}

// LoanHistory represents the query result containing all loan episodes of an item.
type LoanHistory struct {
	Barcode core.BarcodeString
	Loans   []LoanRecord
	Count   int
}
