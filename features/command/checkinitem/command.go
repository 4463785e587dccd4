package checkinitem

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "CheckInItem"
)

// Command represents the intent to check an item back in, closing its loan.
// The active loan determines the borrower, so the command only carries the barcode.
type Command struct {
	Barcode    core.BarcodeString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, occurredAt time.Time) Command {
	return Command{
		Barcode:    barcode,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
