package itemstate

import (
	"github.com/toolroom/loantrack/core"
)

// CurrentItemState represents the query result for an item's lifecycle state.
// HolderID is empty when no loan is active.
type CurrentItemState struct {
	Barcode  core.BarcodeString
	State    string
	Name     string
	Category string
	HolderID core.BorrowerIDString
	LoanID   core.LoanIDString
}
