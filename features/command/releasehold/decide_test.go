package releasehold_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/releasehold"
)

func Test_Decide_Success_WhenLoanOnHold(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC102", "Tile Cutter", "hand-tools", now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut("BC102", "borrower-1", loanID, now.Add(-2*time.Hour)),
		core.BuildItemPlacedOnHold("BC102", "borrower-1", loanID.String(), now.Add(-1*time.Hour)),
	}

	result := releasehold.Decide(events, releasehold.BuildCommand("BC102", now))

	assert.Equal(t, "success", result.Outcome)

	releasedEvent, ok := result.Event.(core.HoldReleased)
	assert.True(t, ok, "Expected HoldReleased event")
	assert.Equal(t, loanID.String(), releasedEvent.LoanID)
}

func Test_Decide_Idempotent_WhenNoHoldActive(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC102", "Tile Cutter", "hand-tools", now.Add(-2*time.Hour)),
		core.BuildItemCheckedOut("BC102", "borrower-1", loanID, now.Add(-1*time.Hour)),
	}

	result := releasehold.Decide(events, releasehold.BuildCommand("BC102", now))

	assert.Equal(t, "idempotent", result.Outcome)
}

func Test_Decide_Error_WhenHoldAlreadyExpired(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC102", "Tile Cutter", "hand-tools", now.Add(-4*time.Hour)),
		core.BuildItemCheckedOut("BC102", "borrower-1", loanID, now.Add(-3*time.Hour)),
		core.BuildItemPlacedOnHold("BC102", "borrower-1", loanID.String(), now.Add(-2*time.Hour)),
		givenHoldExpired(t, loanID, now.Add(-1*time.Hour)),
	}

	result := releasehold.Decide(events, releasehold.BuildCommand("BC102", now))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorContains(t, result.HasError(), "loan is awaiting payment")
}

func givenHoldExpired(t *testing.T, loanID uuid.UUID, at time.Time) core.DomainEvent {
	t.Helper()

	amount, err := decimal.NewFromString("25.00")
	assert.NoError(t, err)

	return core.BuildHoldExpired("BC102", "borrower-1", loanID.String(), uuid.New(), amount, at)
}
