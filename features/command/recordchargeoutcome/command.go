package recordchargeoutcome

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "RecordChargeOutcome"
)

// Command represents a billing outcome reported by the reconciler for a
// previously requested charge. Succeeded closes the loan as Charged; a failed
// attempt keeps the loan awaiting payment and counts towards the retry limit.
type Command struct {
	Barcode    core.BarcodeString
	RequestID  core.RequestIDString
	Succeeded  bool
	Attempts   int
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The RequestID comes from the billing request queue, matching outcomes to
// loans by request id rather than by arrival order.
func BuildCommand(
	barcode core.BarcodeString,
	requestID core.RequestIDString,
	succeeded bool,
	attempts int,
	occurredAt time.Time,
) Command {
	return Command{
		Barcode:    barcode,
		RequestID:  requestID,
		Succeeded:  succeeded,
		Attempts:   attempts,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
