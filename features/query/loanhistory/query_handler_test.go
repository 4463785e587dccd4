package loanhistory_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/checkinitem"
	"github.com/toolroom/loantrack/features/command/checkoutitem"
	"github.com/toolroom/loantrack/features/command/registeritem"
	"github.com/toolroom/loantrack/features/query/loanhistory"
	"github.com/toolroom/loantrack/testutil/memledger"
)

func Test_QueryHandler_Handle_ReconstructsLoanEpisodes(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()

	registerHandler := registeritem.NewCommandHandler(eventLedger)
	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)
	checkInHandler := checkinitem.NewCommandHandler(eventLedger)
	historyHandler := loanhistory.NewQueryHandler(eventLedger)

	// arrange
	_, err := registerHandler.Handle(ctx, registeritem.BuildCommand("BC300", "Circular Saw", "power-tools", fakeClock))
	require.NoError(t, err)

	_, err = checkOutHandler.Handle(ctx, checkoutitem.BuildCommand("BC300", "borrower-1", uuid.New(), fakeClock.Add(time.Hour)))
	require.NoError(t, err)

	_, err = checkInHandler.Handle(ctx, checkinitem.BuildCommand("BC300", fakeClock.Add(2*time.Hour)))
	require.NoError(t, err)

	_, err = checkOutHandler.Handle(ctx, checkoutitem.BuildCommand("BC300", "borrower-2", uuid.New(), fakeClock.Add(3*time.Hour)))
	require.NoError(t, err)

	// act
	result, err := historyHandler.Handle(ctx, loanhistory.BuildQuery("BC300"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	assert.Equal(t, "borrower-1", result.Loans[0].BorrowerID)
	assert.Equal(t, core.OutcomeReturned, result.Loans[0].Outcome)
	assert.True(t, result.Loans[0].IsClosed())

	assert.Equal(t, "borrower-2", result.Loans[1].BorrowerID)
	assert.False(t, result.Loans[1].IsClosed())
}

func Test_QueryHandler_Handle_UnknownBarcodeYieldsEmptyHistory(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	historyHandler := loanhistory.NewQueryHandler(eventLedger)

	// act
	result, err := historyHandler.Handle(ctx, loanhistory.BuildQuery("BC999"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Loans)
}
