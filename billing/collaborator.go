package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/toolroom/loantrack/core"
)

// ChargeStatus is the collaborator's view of a charge request.
type ChargeStatus string

// Charge statuses reported by the collaborator.
const (
	ChargeStatusPending   ChargeStatus = "Pending"
	ChargeStatusSucceeded ChargeStatus = "Succeeded"
	ChargeStatusFailed    ChargeStatus = "Failed"
)

// Collaborator is the external billing system the reconciler talks to.
//
// RequestCharge is an acknowledgement-only call: a nil error means the request
// was accepted, not that the charge went through. The eventual outcome is read
// back via QueryStatus, matched strictly by request id so out-of-order and
// duplicate responses cannot be misattributed.
type Collaborator interface {
	RequestCharge(
		ctx context.Context,
		loanID core.LoanIDString,
		amount decimal.Decimal,
		requestID core.RequestIDString,
	) error

	QueryStatus(ctx context.Context, requestID core.RequestIDString) (ChargeStatus, error)
}
