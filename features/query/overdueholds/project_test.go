package overdueholds_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/query/overdueholds"
)

func Test_Project_HoldsPastCutoffOrderedOldestFirst(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-72 * time.Hour)
	oldLoan := uuid.New()
	olderLoan := uuid.New()

	events := core.DomainEvents{
		core.BuildItemPlacedOnHold("BC500", "borrower-1", oldLoan.String(), now.Add(-80*time.Hour)),
		core.BuildItemPlacedOnHold("BC501", "borrower-2", olderLoan.String(), now.Add(-90*time.Hour)),
	}

	result := overdueholds.ProjectOverdueHolds(events, overdueholds.BuildQuery(cutoff))

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "BC501", result.Holds[0].Barcode)
	assert.Equal(t, olderLoan.String(), result.Holds[0].LoanID)
	assert.Equal(t, "BC500", result.Holds[1].Barcode)
}

func Test_Project_RecentHoldsAreExcluded(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-72 * time.Hour)
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemPlacedOnHold("BC500", "borrower-1", loanID.String(), now.Add(-1*time.Hour)),
	}

	result := overdueholds.ProjectOverdueHolds(events, overdueholds.BuildQuery(cutoff))

	assert.Equal(t, 0, result.Count)
}

func Test_Project_ReleasedAndReturnedHoldsAreExcluded(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-72 * time.Hour)
	releasedLoan := uuid.New()
	returnedLoan := uuid.New()

	events := core.DomainEvents{
		core.BuildItemPlacedOnHold("BC500", "borrower-1", releasedLoan.String(), now.Add(-80*time.Hour)),
		core.BuildHoldReleased("BC500", "borrower-1", releasedLoan.String(), now.Add(-79*time.Hour)),
		core.BuildItemPlacedOnHold("BC501", "borrower-2", returnedLoan.String(), now.Add(-80*time.Hour)),
		core.BuildItemCheckedIn("BC501", "borrower-2", returnedLoan.String(), now.Add(-78*time.Hour)),
	}

	result := overdueholds.ProjectOverdueHolds(events, overdueholds.BuildQuery(cutoff))

	assert.Equal(t, 0, result.Count)
}

func Test_Project_AlreadyExpiredHoldsAreExcluded(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-72 * time.Hour)
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemPlacedOnHold("BC500", "borrower-1", loanID.String(), now.Add(-100*time.Hour)),
		core.BuildHoldExpired("BC500", "borrower-1", loanID.String(), uuid.New(), decimal.RequireFromString("25.00"), now.Add(-20*time.Hour)),
	}

	result := overdueholds.ProjectOverdueHolds(events, overdueholds.BuildQuery(cutoff))

	assert.Equal(t, 0, result.Count)
}

func Test_Project_LaterHoldOnSameItemResetsClock(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-72 * time.Hour)
	firstLoan := uuid.New()
	secondLoan := uuid.New()

	events := core.DomainEvents{
		core.BuildItemPlacedOnHold("BC500", "borrower-1", firstLoan.String(), now.Add(-100*time.Hour)),
		core.BuildItemCheckedIn("BC500", "borrower-1", firstLoan.String(), now.Add(-99*time.Hour)),
		core.BuildItemPlacedOnHold("BC500", "borrower-2", secondLoan.String(), now.Add(-1*time.Hour)),
	}

	result := overdueholds.ProjectOverdueHolds(events, overdueholds.BuildQuery(cutoff))

	assert.Equal(t, 0, result.Count)
}
