package checkoutitem

import (
	"time"

	"github.com/google/uuid"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "CheckOutItem"
)

// Command represents the intent to check an item out to a borrower.
// It encapsulates all the necessary information required to execute the check out use case.
type Command struct {
	Barcode    core.BarcodeString
	BorrowerID core.BorrowerIDString
	LoanID     uuid.UUID
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The caller mints the LoanID; a retried command reuses it so the loan
// identity is stable across concurrency conflicts.
func BuildCommand(
	barcode core.BarcodeString,
	borrowerID core.BorrowerIDString,
	loanID uuid.UUID,
	occurredAt time.Time,
) Command {
	return Command{
		Barcode:    barcode,
		BorrowerID: borrowerID,
		LoanID:     loanID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
