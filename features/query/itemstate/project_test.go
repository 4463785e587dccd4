package itemstate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/query/itemstate"
)

func Test_Project_AvailableAfterRegistration(t *testing.T) {
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC200", "Impact Driver", "power-tools", now.Add(-1*time.Hour)),
	}

	result := itemstate.ProjectCurrentItemState(events, itemstate.BuildQuery("BC200"))

	assert.Equal(t, "BC200", result.Barcode)
	assert.Equal(t, "Available", result.State)
	assert.Equal(t, "Impact Driver", result.Name)
	assert.Equal(t, "power-tools", result.Category)
	assert.Empty(t, result.HolderID)
	assert.Empty(t, result.LoanID)
}

func Test_Project_CheckedOutShowsHolderAndLoan(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC200", "Impact Driver", "power-tools", now.Add(-2*time.Hour)),
		core.BuildItemCheckedOut("BC200", "borrower-1", loanID, now.Add(-1*time.Hour)),
	}

	result := itemstate.ProjectCurrentItemState(events, itemstate.BuildQuery("BC200"))

	assert.Equal(t, "CheckedOut", result.State)
	assert.Equal(t, "borrower-1", result.HolderID)
	assert.Equal(t, loanID.String(), result.LoanID)
}

func Test_Project_HolderClearedAfterCheckIn(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC200", "Impact Driver", "power-tools", now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut("BC200", "borrower-1", loanID, now.Add(-2*time.Hour)),
		core.BuildItemCheckedIn("BC200", "borrower-1", loanID.String(), now.Add(-1*time.Hour)),
	}

	result := itemstate.ProjectCurrentItemState(events, itemstate.BuildQuery("BC200"))

	assert.Equal(t, "Available", result.State)
	assert.Empty(t, result.HolderID)
	assert.Empty(t, result.LoanID)
}

func Test_Project_AwaitingPaymentKeepsHolder(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC200", "Impact Driver", "power-tools", now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut("BC200", "borrower-1", loanID, now.Add(-2*time.Hour)),
		core.BuildLoanMarkedComplete("BC200", "borrower-1", loanID.String(), uuid.New(), decimal.RequireFromString("25.00"), now.Add(-1*time.Hour)),
	}

	result := itemstate.ProjectCurrentItemState(events, itemstate.BuildQuery("BC200"))

	assert.Equal(t, "AwaitingPayment", result.State)
	assert.Equal(t, "borrower-1", result.HolderID)
}

func Test_Project_NotRegisteredForUnknownBarcode(t *testing.T) {
	result := itemstate.ProjectCurrentItemState(core.DomainEvents{}, itemstate.BuildQuery("BC999"))

	assert.Equal(t, "NotRegistered", result.State)
	assert.Empty(t, result.Name)
}
