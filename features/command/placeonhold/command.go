package placeonhold

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "PlaceOnHold"
)

// Command represents the intent to place the active loan of an item on hold.
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
