package waiveloan

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "WaiveLoan"
)

// Command represents an operator's intent to waive the outstanding charge on a
// loan, closing it as Waived.
type Command struct {
	Barcode    core.BarcodeString
	WaivedBy   string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, waivedBy string, occurredAt time.Time) Command {
	return Command{
		Barcode:    barcode,
		WaivedBy:   waivedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
