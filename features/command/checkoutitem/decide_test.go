package checkoutitem_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/checkoutitem"
)

const (
	testBarcode  = "BC100"
	testBorrower = "borrower-1"
	otherBorrower = "borrower-2"
)

func Test_Decide_Success_WhenItemAvailable(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-2*time.Hour)),
	}

	command := checkoutitem.BuildCommand(testBarcode, testBorrower, loanID, now)

	// act
	result := checkoutitem.Decide(events, command)

	// assert
	assertSuccessDecision(t, result, loanID)
}

func Test_Decide_Success_AfterPreviousLoanClosed(t *testing.T) {
	// arrange
	now := time.Now()
	previousLoanID := uuid.New()
	loanID := uuid.New()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-5*time.Hour)),
		core.BuildItemCheckedOut(testBarcode, otherBorrower, previousLoanID, now.Add(-4*time.Hour)),
		core.BuildItemCheckedIn(testBarcode, otherBorrower, previousLoanID.String(), now.Add(-3*time.Hour)),
	}

	command := checkoutitem.BuildCommand(testBarcode, testBorrower, loanID, now)

	// act
	result := checkoutitem.Decide(events, command)

	// assert
	assertSuccessDecision(t, result, loanID)
}

func Test_Decide_Idempotent_WhenAlreadyCheckedOutToSameBorrower(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-2*time.Hour)),
		core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-1*time.Hour)),
	}

	command := checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), now)

	// act
	result := checkoutitem.Decide(events, command)

	// assert
	assert.Equal(t, "idempotent", result.Outcome, "Expected idempotent decision")
	assert.Nil(t, result.Event, "Expected no event for idempotent decision")
	assert.NoError(t, result.HasError())
}

func Test_Decide_Idempotent_WhenOnHoldForSameBorrower(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-2*time.Hour)),
		core.BuildItemPlacedOnHold(testBarcode, testBorrower, loanID.String(), now.Add(-1*time.Hour)),
	}

	command := checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), now)

	// act
	result := checkoutitem.Decide(events, command)

	// assert
	assert.Equal(t, "idempotent", result.Outcome)
}

func Test_Decide_BusinessErrors(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	testCases := []struct {
		name           string
		events         core.DomainEvents
		expectedReason string
	}{
		{
			name:           "barcode never registered",
			events:         core.DomainEvents{},
			expectedReason: "no item is registered for this barcode",
		},
		{
			name: "item retired",
			events: core.DomainEvents{
				givenItemRegistered(t, now.Add(-2*time.Hour)),
				core.BuildItemRetired(testBarcode, now.Add(-1*time.Hour)),
			},
			expectedReason: "item is retired",
		},
		{
			name: "item checked out to another borrower",
			events: core.DomainEvents{
				givenItemRegistered(t, now.Add(-2*time.Hour)),
				core.BuildItemCheckedOut(testBarcode, otherBorrower, loanID, now.Add(-1*time.Hour)),
			},
			expectedReason: "item is already checked out to another borrower",
		},
		{
			name: "previous loan awaiting payment",
			events: core.DomainEvents{
				givenItemRegistered(t, now.Add(-3*time.Hour)),
				core.BuildItemCheckedOut(testBarcode, otherBorrower, loanID, now.Add(-2*time.Hour)),
				givenLoanMarkedComplete(t, otherBorrower, loanID.String(), now.Add(-1*time.Hour)),
			},
			expectedReason: "loan is awaiting payment",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			command := checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), now)

			// act
			result := checkoutitem.Decide(tc.events, command)

			// assert
			assertErrorDecision(t, result, tc.expectedReason)
		})
	}
}

func Test_Decide_RejectionEventsDoNotAffectState(t *testing.T) {
	// arrange
	now := time.Now()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-2*time.Hour)),
		core.BuildTransitionRejected(testBarcode, core.RejectedCommandCheckInItem, "item has no active loan", now.Add(-1*time.Hour)),
	}

	command := checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), now)

	// act
	result := checkoutitem.Decide(events, command)

	// assert - the rejection is audit-only, the item is still available
	assert.Equal(t, "success", result.Outcome)
}

// Test helper functions with t.Helper() for better error reporting

func givenItemRegistered(t *testing.T, at time.Time) core.DomainEvent {
	t.Helper()
	return core.BuildItemRegistered(testBarcode, "Cordless Drill", "power-tools", at)
}

func givenLoanMarkedComplete(t *testing.T, borrowerID core.BorrowerIDString, loanID core.LoanIDString, at time.Time) core.DomainEvent {
	t.Helper()
	return core.BuildLoanMarkedComplete(testBarcode, borrowerID, loanID, uuid.New(), testAmount(t), at)
}

func testAmount(t *testing.T) decimal.Decimal {
	t.Helper()
	amount, err := decimal.NewFromString("25.00")
	assert.NoError(t, err)
	return amount
}

func assertSuccessDecision(t *testing.T, result core.DecisionResult, loanID uuid.UUID) {
	t.Helper()
	assert.Equal(t, "success", result.Outcome, "Expected success decision")
	assert.NotNil(t, result.Event, "Expected event to be generated")
	assert.NoError(t, result.HasError(), "Expected no error for success decision")

	checkedOutEvent, ok := result.Event.(core.ItemCheckedOut)
	assert.True(t, ok, "Expected ItemCheckedOut event")
	assert.Equal(t, testBarcode, checkedOutEvent.Barcode, "Event should have correct Barcode")
	assert.Equal(t, testBorrower, checkedOutEvent.BorrowerID, "Event should have correct BorrowerID")
	assert.Equal(t, loanID.String(), checkedOutEvent.LoanID, "Event should have correct LoanID")
}

func assertErrorDecision(t *testing.T, result core.DecisionResult, expectedReason string) {
	t.Helper()
	assert.Equal(t, "error", result.Outcome, "Expected error decision")
	assert.NotNil(t, result.Event, "Expected rejection event to be generated")
	assert.Error(t, result.HasError(), "Expected error for error decision")
	assert.ErrorContains(t, result.HasError(), expectedReason, "Error message should contain expected reason")

	rejectedEvent, ok := result.Event.(core.TransitionRejected)
	assert.True(t, ok, "Expected TransitionRejected event")
	assert.Contains(t, rejectedEvent.FailureInfo, expectedReason, "Rejection event should contain expected reason")
}
