package waiveloan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/waiveloan"
)

func Test_Decide_Success_WhenLoanAwaitingPayment(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()
	requestID := uuid.New()

	amount, err := decimal.NewFromString("25.00")
	assert.NoError(t, err)

	events := core.DomainEvents{
		core.BuildItemRegistered("BC101", "Angle Grinder", "power-tools", now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut("BC101", "borrower-1", loanID, now.Add(-2*time.Hour)),
		core.BuildLoanMarkedComplete("BC101", "borrower-1", loanID.String(), requestID, amount, now.Add(-1*time.Hour)),
	}

	result := waiveloan.Decide(events, waiveloan.BuildCommand("BC101", "operator-7", now))

	assert.Equal(t, "success", result.Outcome)

	waivedEvent, ok := result.Event.(core.ChargeWaived)
	assert.True(t, ok, "Expected ChargeWaived event")
	assert.Equal(t, loanID.String(), waivedEvent.LoanID)
	assert.Equal(t, requestID.String(), waivedEvent.RequestID, "Waiver resolves the outstanding request")
	assert.Equal(t, "operator-7", waivedEvent.WaivedBy)
}

func Test_Decide_Error_WhenNoChargeOutstanding(t *testing.T) {
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC101", "Angle Grinder", "power-tools", now.Add(-1*time.Hour)),
	}

	result := waiveloan.Decide(events, waiveloan.BuildCommand("BC101", "operator-7", now))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidTransition)
	assert.ErrorContains(t, result.HasError(), "loan is not awaiting payment")
}

func Test_Decide_Error_WhenItemNotRegistered(t *testing.T) {
	result := waiveloan.Decide(core.DomainEvents{}, waiveloan.BuildCommand("BC101", "operator-7", time.Now()))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrItemNotFound)
}
