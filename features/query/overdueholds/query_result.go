package overdueholds

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

// OverdueHold represents one item that has been on hold past the cutoff.
type OverdueHold struct {
	Barcode    core.BarcodeString
	BorrowerID core.BorrowerIDString
	LoanID     core.LoanIDString
	HeldSince  time.Time
}

// OverdueHolds represents the query result listing all holds past the cutoff.
type OverdueHolds struct {
	Holds []OverdueHold
	Count int
}
