package recordchargeoutcome_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/recordchargeoutcome"
)

const (
	testBarcode  = "BC101"
	testBorrower = "borrower-1"
)

func Test_Decide_Success_ChargeSucceeded(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()
	requestID := uuid.New()

	events := givenLoanAwaitingPayment(t, loanID, requestID, now)

	command := recordchargeoutcome.BuildCommand(testBarcode, requestID.String(), true, 1, now)

	// act
	result := recordchargeoutcome.Decide(events, command)

	// assert
	assert.Equal(t, "success", result.Outcome)
	assert.NoError(t, result.HasError())

	succeededEvent, ok := result.Event.(core.ChargeSucceeded)
	assert.True(t, ok, "Expected ChargeSucceeded event")
	assert.Equal(t, loanID.String(), succeededEvent.LoanID)
	assert.Equal(t, requestID.String(), succeededEvent.RequestID)
}

func Test_Decide_Success_ChargeAttemptFailed(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()
	requestID := uuid.New()

	events := givenLoanAwaitingPayment(t, loanID, requestID, now)

	command := recordchargeoutcome.BuildCommand(testBarcode, requestID.String(), false, 1, now)

	// act
	result := recordchargeoutcome.Decide(events, command)

	// assert - the loan stays awaiting payment, the failed attempt is recorded
	assert.Equal(t, "success", result.Outcome)

	failedEvent, ok := result.Event.(core.ChargeAttemptFailed)
	assert.True(t, ok, "Expected ChargeAttemptFailed event")
	assert.Equal(t, 1, failedEvent.Attempts)
}

func Test_Decide_Idempotent_WhenFailedAttemptAlreadyRecorded(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()
	requestID := uuid.New()

	events := givenLoanAwaitingPayment(t, loanID, requestID, now)
	events = append(events,
		core.BuildChargeAttemptFailed(testBarcode, loanID.String(), requestID.String(), 2, now.Add(-10*time.Minute)),
	)

	command := recordchargeoutcome.BuildCommand(testBarcode, requestID.String(), false, 2, now)

	// act
	result := recordchargeoutcome.Decide(events, command)

	// assert
	assert.Equal(t, "idempotent", result.Outcome, "Duplicate failure report should not append a second event")
}

func Test_Decide_Idempotent_WhenRequestAlreadyResolved(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()
	requestID := uuid.New()

	events := givenLoanAwaitingPayment(t, loanID, requestID, now)
	events = append(events,
		core.BuildChargeSucceeded(testBarcode, loanID.String(), requestID.String(), now.Add(-10*time.Minute)),
	)

	command := recordchargeoutcome.BuildCommand(testBarcode, requestID.String(), true, 1, now)

	// act
	result := recordchargeoutcome.Decide(events, command)

	// assert - a late duplicate outcome for a closed loan is absorbed
	assert.Equal(t, "idempotent", result.Outcome)
}

func Test_Decide_Error_WhenRequestIDDoesNotMatch(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()
	requestID := uuid.New()

	events := givenLoanAwaitingPayment(t, loanID, requestID, now)

	command := recordchargeoutcome.BuildCommand(testBarcode, uuid.New().String(), true, 1, now)

	// act
	result := recordchargeoutcome.Decide(events, command)

	// assert
	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidTransition)
	assert.ErrorContains(t, result.HasError(), "no outstanding charge for this request id")
}

func Test_Decide_Error_WhenNoChargeOutstanding(t *testing.T) {
	// arrange
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered(testBarcode, "Angle Grinder", "power-tools", now.Add(-2*time.Hour)),
	}

	command := recordchargeoutcome.BuildCommand(testBarcode, uuid.New().String(), true, 1, now)

	// act
	result := recordchargeoutcome.Decide(events, command)

	// assert
	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidTransition)
}

func Test_Decide_Error_WhenItemNotRegistered(t *testing.T) {
	// arrange
	command := recordchargeoutcome.BuildCommand(testBarcode, uuid.New().String(), true, 1, time.Now())

	// act
	result := recordchargeoutcome.Decide(core.DomainEvents{}, command)

	// assert
	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrItemNotFound)
}

// Test helper functions with t.Helper() for better error reporting

func givenLoanAwaitingPayment(t *testing.T, loanID, requestID uuid.UUID, now time.Time) core.DomainEvents {
	t.Helper()

	amount, err := decimal.NewFromString("25.00")
	assert.NoError(t, err)

	return core.DomainEvents{
		core.BuildItemRegistered(testBarcode, "Angle Grinder", "power-tools", now.Add(-4*time.Hour)),
		core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-3*time.Hour)),
		core.BuildLoanMarkedComplete(testBarcode, testBorrower, loanID.String(), requestID, amount, now.Add(-2*time.Hour)),
	}
}
