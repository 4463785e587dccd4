package markloancomplete

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "MarkLoanComplete"
)

// Command represents the intent to mark a borrower's task finished while the
// item has not come back, moving the loan to AwaitingPayment.
type Command struct {
	Barcode    core.BarcodeString
	RequestID  uuid.UUID
	Amount     decimal.Decimal
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// The caller mints the RequestID; billing retries reuse it so the collaborator
// sees at most one request id per triggering transition.
func BuildCommand(
	barcode core.BarcodeString,
	requestID uuid.UUID,
	amount decimal.Decimal,
	occurredAt time.Time,
) Command {
	return Command{
		Barcode:    barcode,
		RequestID:  requestID,
		Amount:     amount,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
