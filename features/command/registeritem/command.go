package registeritem

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "RegisterItem"
)

// Command represents the intent to register an inventory item under a barcode.
type Command struct {
	Barcode    core.BarcodeString
	Name       string
	Category   string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, name string, category string, occurredAt time.Time) Command {
	return Command{
		Barcode:    barcode,
		Name:       name,
		Category:   category,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
