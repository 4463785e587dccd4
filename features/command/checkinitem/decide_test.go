package checkinitem_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/checkinitem"
)

const (
	testBarcode  = "BC100"
	testBorrower = "borrower-1"
)

func Test_Decide_Success_WhenItemCheckedOut(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-2*time.Hour)),
	}

	command := checkinitem.BuildCommand(testBarcode, now)

	// act
	result := checkinitem.Decide(events, command)

	// assert
	assertSuccessDecision(t, result, loanID)
}

func Test_Decide_Success_WhenItemOnHold(t *testing.T) {
	// arrange
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		givenItemRegistered(t, now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-2*time.Hour)),
		core.BuildItemPlacedOnHold(testBarcode, testBorrower, loanID.String(), now.Add(-1*time.Hour)),
	}

	command := checkinitem.BuildCommand(testBarcode, now)

	// act
	result := checkinitem.Decide(events, command)

	// assert - a check-in from hold closes the loan like a regular return
	assertSuccessDecision(t, result, loanID)
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
			name: "item available, no active loan",
			events: core.DomainEvents{
				givenItemRegistered(t, now.Add(-1*time.Hour)),
			},
			expectedReason: "item has no active loan",
		},
		{
			name: "item already returned",
			events: core.DomainEvents{
				givenItemRegistered(t, now.Add(-3*time.Hour)),
				core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-2*time.Hour)),
				core.BuildItemCheckedIn(testBarcode, testBorrower, loanID.String(), now.Add(-1*time.Hour)),
			},
			expectedReason: "item has no active loan",
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
			name: "loan awaiting payment",
			events: core.DomainEvents{
				givenItemRegistered(t, now.Add(-3*time.Hour)),
				core.BuildItemCheckedOut(testBarcode, testBorrower, loanID, now.Add(-2*time.Hour)),
				core.BuildLoanMarkedComplete(testBarcode, testBorrower, loanID.String(), uuid.New(), testAmount(t), now.Add(-1*time.Hour)),
			},
			expectedReason: "loan is awaiting payment resolution",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			command := checkinitem.BuildCommand(testBarcode, now)

			// act
			result := checkinitem.Decide(tc.events, command)

			// assert
			assert.Equal(t, "error", result.Outcome, "Expected error decision")
			assert.Error(t, result.HasError())
			assert.ErrorContains(t, result.HasError(), tc.expectedReason)

			rejectedEvent, ok := result.Event.(core.TransitionRejected)
			assert.True(t, ok, "Expected TransitionRejected event")
			assert.Contains(t, rejectedEvent.FailureInfo, tc.expectedReason)
		})
	}
}

// Test helper functions with t.Helper() for better error reporting

func givenItemRegistered(t *testing.T, at time.Time) core.DomainEvent {
	t.Helper()
	return core.BuildItemRegistered(testBarcode, "Cordless Drill", "power-tools", at)
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
	assert.NoError(t, result.HasError())

	checkedInEvent, ok := result.Event.(core.ItemCheckedIn)
	assert.True(t, ok, "Expected ItemCheckedIn event")
	assert.Equal(t, testBarcode, checkedInEvent.Barcode)
	assert.Equal(t, testBorrower, checkedInEvent.BorrowerID, "Event should carry the active loan's borrower")
	assert.Equal(t, loanID.String(), checkedInEvent.LoanID, "Event should carry the active loan's id")
}
