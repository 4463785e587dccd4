package placeonhold_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/placeonhold"
)

func Test_Decide_Success_WhenItemCheckedOut(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC102", "Tile Cutter", "hand-tools", now.Add(-2*time.Hour)),
		core.BuildItemCheckedOut("BC102", "borrower-1", loanID, now.Add(-1*time.Hour)),
	}

	result := placeonhold.Decide(events, placeonhold.BuildCommand("BC102", now))

	assert.Equal(t, "success", result.Outcome)

	holdEvent, ok := result.Event.(core.ItemPlacedOnHold)
	assert.True(t, ok, "Expected ItemPlacedOnHold event")
	assert.Equal(t, "borrower-1", holdEvent.BorrowerID)
	assert.Equal(t, loanID.String(), holdEvent.LoanID)
}

func Test_Decide_Idempotent_WhenAlreadyOnHold(t *testing.T) {
	now := time.Now()
	loanID := uuid.New()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC102", "Tile Cutter", "hand-tools", now.Add(-3*time.Hour)),
		core.BuildItemCheckedOut("BC102", "borrower-1", loanID, now.Add(-2*time.Hour)),
		core.BuildItemPlacedOnHold("BC102", "borrower-1", loanID.String(), now.Add(-1*time.Hour)),
	}

	result := placeonhold.Decide(events, placeonhold.BuildCommand("BC102", now))

	assert.Equal(t, "idempotent", result.Outcome)
}

func Test_Decide_Error_WhenNoActiveLoan(t *testing.T) {
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC102", "Tile Cutter", "hand-tools", now.Add(-1*time.Hour)),
	}

	result := placeonhold.Decide(events, placeonhold.BuildCommand("BC102", now))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidTransition)
	assert.ErrorContains(t, result.HasError(), "item has no active loan")
}

func Test_Decide_Error_WhenItemNotRegistered(t *testing.T) {
	result := placeonhold.Decide(core.DomainEvents{}, placeonhold.BuildCommand("BC102", time.Now()))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrItemNotFound)
}
