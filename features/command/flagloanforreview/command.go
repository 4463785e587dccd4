package flagloanforreview

import (
	"time"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "FlagLoanForReview"
)

// Command represents the reconciler's intent to surface a loan for manual
// intervention after automatic billing retries were exhausted.
type Command struct {
	Barcode    core.BarcodeString
	RequestID  core.RequestIDString
	Reason     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	barcode core.BarcodeString,
	requestID core.RequestIDString,
	reason string,
	occurredAt time.Time,
) Command {
	return Command{
		Barcode:    barcode,
		RequestID:  requestID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
