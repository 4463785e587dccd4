package expirehold

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
)

const (
	commandType = "ExpireHold"
)

// Command represents the intent to expire a hold that outlived the grace
// period, moving the loan to AwaitingPayment. It is raised by the periodic
// sweep, not by a scan.
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
// The sweep mints the RequestID; billing retries reuse it.
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
