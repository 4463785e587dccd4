package retireitem_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/retireitem"
)

func Test_Decide_Success_WhenItemAvailable(t *testing.T) {
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC100", "Cordless Drill", "power-tools", now.Add(-1*time.Hour)),
	}

	result := retireitem.Decide(events, retireitem.BuildCommand("BC100", now))

	assert.Equal(t, "success", result.Outcome)

	_, ok := result.Event.(core.ItemRetired)
	assert.True(t, ok, "Expected ItemRetired event")
}

func Test_Decide_Idempotent_WhenAlreadyRetired(t *testing.T) {
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC100", "Cordless Drill", "power-tools", now.Add(-2*time.Hour)),
		core.BuildItemRetired("BC100", now.Add(-1*time.Hour)),
	}

	result := retireitem.Decide(events, retireitem.BuildCommand("BC100", now))

	assert.Equal(t, "idempotent", result.Outcome)
}

func Test_Decide_Error_WhenItemNotRegistered(t *testing.T) {
	result := retireitem.Decide(core.DomainEvents{}, retireitem.BuildCommand("BC100", time.Now()))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrItemNotFound)
}

func Test_Decide_Error_WhenItemHasOpenLoan(t *testing.T) {
	now := time.Now()

	events := core.DomainEvents{
		core.BuildItemRegistered("BC100", "Cordless Drill", "power-tools", now.Add(-2*time.Hour)),
		core.BuildItemCheckedOut("BC100", "borrower-1", uuid.New(), now.Add(-1*time.Hour)),
	}

	result := retireitem.Decide(events, retireitem.BuildCommand("BC100", now))

	assert.Equal(t, "error", result.Outcome)
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidTransition)
	assert.ErrorContains(t, result.HasError(), "item has an open loan")
}
