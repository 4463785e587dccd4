package overdueholds_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolroom/loantrack/features/command/checkoutitem"
	"github.com/toolroom/loantrack/features/command/placeonhold"
	"github.com/toolroom/loantrack/features/command/registeritem"
	"github.com/toolroom/loantrack/features/query/overdueholds"
	"github.com/toolroom/loantrack/testutil/memledger"
)

func Test_QueryHandler_Handle_FindsHoldsPastCutoff(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()

	registerHandler := registeritem.NewCommandHandler(eventLedger)
	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)
	holdHandler := placeonhold.NewCommandHandler(eventLedger)
	sweepHandler := overdueholds.NewQueryHandler(eventLedger)

	// arrange
	_, err := registerHandler.Handle(ctx, registeritem.BuildCommand("BC500", "Demolition Hammer", "power-tools", fakeClock))
	require.NoError(t, err)

	_, err = checkOutHandler.Handle(ctx, checkoutitem.BuildCommand("BC500", "borrower-1", uuid.New(), fakeClock.Add(time.Hour)))
	require.NoError(t, err)

	_, err = holdHandler.Handle(ctx, placeonhold.BuildCommand("BC500", fakeClock.Add(2*time.Hour)))
	require.NoError(t, err)

	// act
	result, err := sweepHandler.Handle(ctx, overdueholds.BuildQuery(fakeClock.Add(100*time.Hour)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "BC500", result.Holds[0].Barcode)
	assert.Equal(t, "borrower-1", result.Holds[0].BorrowerID)

	// a cutoff before the hold started matches nothing
	result, err = sweepHandler.Handle(ctx, overdueholds.BuildQuery(fakeClock.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
}
