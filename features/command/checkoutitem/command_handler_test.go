package checkoutitem_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/checkoutitem"
	"github.com/toolroom/loantrack/features/command/registeritem"
	"github.com/toolroom/loantrack/ledger"
	"github.com/toolroom/loantrack/testutil/memledger"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()

	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)
	registerHandler := registeritem.NewCommandHandler(eventLedger)

	fakeClock := time.Unix(0, 0).UTC()
	loanID := uuid.New()

	registerCmd := registeritem.BuildCommand(testBarcode, "Cordless Drill", "power-tools", fakeClock.Add(time.Hour))
	_, err := registerHandler.Handle(ctx, registerCmd)
	require.NoError(t, err, "Should successfully register item")

	// act
	checkOutCmd := checkoutitem.BuildCommand(testBarcode, testBorrower, loanID, fakeClock.Add(2*time.Hour))
	result, err := checkOutHandler.Handle(ctx, checkOutCmd)

	// assert
	assert.NoError(t, err, "Should successfully check out item")
	assert.False(t, result.Idempotent, "Operation should not be idempotent")
	verifyLastEventType(ctx, t, eventLedger, core.ItemCheckedOutEventType)
}

func Test_CommandHandler_Handle_Error_CheckedOutToAnotherBorrower(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()

	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)
	registerHandler := registeritem.NewCommandHandler(eventLedger)

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	registerCmd := registeritem.BuildCommand(testBarcode, "Cordless Drill", "power-tools", fakeClock.Add(time.Hour))
	_, err := registerHandler.Handle(ctx, registerCmd)
	require.NoError(t, err)

	firstCheckOut := checkoutitem.BuildCommand(testBarcode, otherBorrower, uuid.New(), fakeClock.Add(2*time.Hour))
	_, err = checkOutHandler.Handle(ctx, firstCheckOut)
	require.NoError(t, err, "Should successfully check out item to first borrower")

	// act
	secondCheckOut := checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), fakeClock.Add(3*time.Hour))
	_, err = checkOutHandler.Handle(ctx, secondCheckOut)

	// assert
	assert.Error(t, err, "Should fail to check out item held by another borrower")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.ErrorContains(t, err, "item is already checked out to another borrower")
	verifyRejectionEventPersisted(ctx, t, eventLedger, core.RejectedCommandCheckOutItem)
}

func Test_CommandHandler_Handle_Error_ItemNotFound(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()

	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)

	// act
	checkOutCmd := checkoutitem.BuildCommand("BC999", testBorrower, uuid.New(), time.Unix(0, 0).UTC())
	_, err := checkOutHandler.Handle(ctx, checkOutCmd)

	// assert
	assert.Error(t, err)
	assert.ErrorIs(t, err, core.ErrItemNotFound)
}

func Test_CommandHandler_Handle_Idempotent_SameBorrowerScansTwice(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()

	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)
	registerHandler := registeritem.NewCommandHandler(eventLedger)

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	registerCmd := registeritem.BuildCommand(testBarcode, "Cordless Drill", "power-tools", fakeClock.Add(time.Hour))
	_, err := registerHandler.Handle(ctx, registerCmd)
	require.NoError(t, err)

	checkOutCmd := checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), fakeClock.Add(2*time.Hour))
	_, err = checkOutHandler.Handle(ctx, checkOutCmd)
	require.NoError(t, err, "Should successfully check out item first time")

	eventsBefore := len(eventLedger.AllEvents())

	// act
	result, err := checkOutHandler.Handle(ctx, checkOutCmd)

	// assert
	assert.NoError(t, err, "Should succeed (idempotent) when item already with same borrower")
	assert.True(t, result.Idempotent, "Operation should be idempotent")
	assert.Len(t, eventLedger.AllEvents(), eventsBefore, "No new events should be appended")
}

func Test_CommandHandler_Handle_ConcurrentCheckOuts_OnlyOneWins(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()

	checkOutHandler := checkoutitem.NewCommandHandler(eventLedger)
	registerHandler := registeritem.NewCommandHandler(eventLedger)

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	registerCmd := registeritem.BuildCommand(testBarcode, "Cordless Drill", "power-tools", fakeClock.Add(time.Hour))
	_, err := registerHandler.Handle(ctx, registerCmd)
	require.NoError(t, err)

	commands := []checkoutitem.Command{
		checkoutitem.BuildCommand(testBarcode, testBorrower, uuid.New(), fakeClock.Add(2*time.Hour)),
		checkoutitem.BuildCommand(testBarcode, otherBorrower, uuid.New(), fakeClock.Add(2*time.Hour)),
	}

	// act: both borrowers scan the same item at the same time
	errs := make([]error, len(commands))

	var wg sync.WaitGroup
	for i, cmd := range commands {
		wg.Add(1)

		go func() {
			defer wg.Done()
			_, errs[i] = checkOutHandler.Handle(ctx, cmd)
		}()
	}
	wg.Wait()

	// assert: exactly one check-out succeeds, the other is rejected
	successes := 0
	rejections := 0

	for _, handleErr := range errs {
		switch {
		case handleErr == nil:
			successes++
		default:
			assert.ErrorIs(t, handleErr, core.ErrInvalidTransition)
			rejections++
		}
	}

	assert.Equal(t, 1, successes, "Exactly one check-out should succeed")
	assert.Equal(t, 1, rejections, "The losing check-out should be rejected")

	checkedOutEvents := 0
	for _, event := range eventLedger.AllEvents() {
		if event.EventType == core.ItemCheckedOutEventType {
			checkedOutEvents++
		}
	}

	assert.Equal(t, 1, checkedOutEvents, "Exactly one check-out event should be persisted")
	verifyRejectionEventPersisted(ctx, t, eventLedger, core.RejectedCommandCheckOutItem)
}

// Test helper functions

func verifyLastEventType(ctx context.Context, t *testing.T, eventLedger *memledger.MemLedger, expectedEventType string) {
	t.Helper()

	events, _, err := eventLedger.Query(ctx, checkoutitem.BuildEventFilter(testBarcode))
	require.NoError(t, err, "Should query events successfully")
	require.NotEmpty(t, events, "Should have events persisted")

	lastEvent := events[len(events)-1]
	assert.Equal(t, expectedEventType, lastEvent.EventType)
}

func verifyRejectionEventPersisted(ctx context.Context, t *testing.T, eventLedger *memledger.MemLedger, rejectedCommand string) {
	t.Helper()

	rejectionFilter := ledger.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.TransitionRejectedEventTypePrefix + ":" + rejectedCommand).
		AndAnyPredicateOf(ledger.P("Barcode", testBarcode)).
		Finalize()

	rejectionEvents, _, err := eventLedger.Query(ctx, rejectionFilter)
	require.NoError(t, err, "Should query rejection events successfully")

	assert.NotEmpty(t, rejectionEvents, "Should have rejection event persisted")
}
