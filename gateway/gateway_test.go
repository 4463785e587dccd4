package gateway_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/features/command/registeritem"
	"github.com/toolroom/loantrack/gateway"
	"github.com/toolroom/loantrack/shell"
	"github.com/toolroom/loantrack/testutil/memledger"
	"github.com/toolroom/loantrack/testutil/observability/testdoubles"
)

const (
	testBarcode  = "BC600"
	testBorrower = "borrower-1"
)

func Test_Gateway_Handle_CheckOutScanChangesState(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()
	scanGateway := gateway.NewGateway(eventLedger, chargeAmount(t))

	registerTestItem(t, eventLedger, fakeClock)

	// act
	result, err := scanGateway.Handle(ctx, gateway.ScanEvent{
		Barcode:          testBarcode,
		Kind:             gateway.ScanCheckOut,
		BorrowerID:       testBorrower,
		OccurredAt:       fakeClock.Add(time.Hour),
		IdempotencyToken: "scan-001",
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.CheckedOut.String(), result.State)
	assert.False(t, result.Duplicate)
	assert.False(t, result.Idempotent)
}

func Test_Gateway_Handle_DuplicateTokenIsAbsorbedWithoutNewEvents(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()
	metricsSpy := testdoubles.NewMetricsCollectorSpy()
	scanGateway := gateway.NewGateway(eventLedger, chargeAmount(t), gateway.WithMetrics(metricsSpy))

	registerTestItem(t, eventLedger, fakeClock)

	scan := gateway.ScanEvent{
		Barcode:          testBarcode,
		Kind:             gateway.ScanCheckOut,
		BorrowerID:       testBorrower,
		OccurredAt:       fakeClock.Add(time.Hour),
		IdempotencyToken: "scan-001",
	}

	_, err := scanGateway.Handle(ctx, scan)
	require.NoError(t, err)

	eventsAfterFirstScan := len(eventLedger.AllEvents())

	// act
	result, err := scanGateway.Handle(ctx, scan)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Duplicate, "Redelivered token should be absorbed")
	assert.Equal(t, core.CheckedOut.String(), result.State)
	assert.Len(t, eventLedger.AllEvents(), eventsAfterFirstScan, "No new events should be appended for a duplicate token")
	assert.Equal(t, 1, metricsSpy.CounterCount(shell.GatewayDuplicateScansMetric))
}

func Test_Gateway_Handle_FreshTokenDoubleScanIsIdempotent(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()
	scanGateway := gateway.NewGateway(eventLedger, chargeAmount(t))

	registerTestItem(t, eventLedger, fakeClock)

	first := gateway.ScanEvent{
		Barcode:          testBarcode,
		Kind:             gateway.ScanCheckOut,
		BorrowerID:       testBorrower,
		OccurredAt:       fakeClock.Add(time.Hour),
		IdempotencyToken: "scan-001",
	}

	_, err := scanGateway.Handle(ctx, first)
	require.NoError(t, err)

	// act: same borrower scans again with a new device token
	second := first
	second.IdempotencyToken = "scan-002"
	second.OccurredAt = fakeClock.Add(2 * time.Hour)

	result, err := scanGateway.Handle(ctx, second)

	// assert: absorbed at the decide level, not the token window
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.True(t, result.Idempotent)
	assert.Equal(t, core.CheckedOut.String(), result.State)
}

func Test_Gateway_Handle_RejectedTransitionSurfacesAsError(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()
	scanGateway := gateway.NewGateway(eventLedger, chargeAmount(t))

	registerTestItem(t, eventLedger, fakeClock)

	// act: check in an item that was never checked out
	_, err := scanGateway.Handle(ctx, gateway.ScanEvent{
		Barcode:    testBarcode,
		Kind:       gateway.ScanCheckIn,
		OccurredAt: fakeClock.Add(time.Hour),
	})

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func Test_Gateway_Handle_DuplicateTokenOfRejectedScanDoesNotAppendAgain(t *testing.T) {
	// setup
	ctx := t.Context()
	eventLedger := memledger.New()
	fakeClock := time.Unix(0, 0).UTC()
	metricsSpy := testdoubles.NewMetricsCollectorSpy()
	scanGateway := gateway.NewGateway(eventLedger, chargeAmount(t), gateway.WithMetrics(metricsSpy))

	registerTestItem(t, eventLedger, fakeClock)

	// check in an item that was never checked out
	scan := gateway.ScanEvent{
		Barcode:          testBarcode,
		Kind:             gateway.ScanCheckIn,
		OccurredAt:       fakeClock.Add(time.Hour),
		IdempotencyToken: "scan-001",
	}

	_, err := scanGateway.Handle(ctx, scan)
	require.ErrorIs(t, err, core.ErrInvalidTransition)

	eventsAfterFirstScan := len(eventLedger.AllEvents())

	// act: the same rejected scan is redelivered
	_, err = scanGateway.Handle(ctx, scan)

	// assert: same rejection, no second audit event
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Len(t, eventLedger.AllEvents(), eventsAfterFirstScan, "Redelivered rejection should not append another audit event")
	assert.Equal(t, 1, metricsSpy.CounterCount(shell.GatewayDuplicateScansMetric))
}

func Test_Gateway_Handle_ValidationRejectsBadScans(t *testing.T) {
	ctx := t.Context()
	scanGateway := gateway.NewGateway(memledger.New(), chargeAmount(t))

	_, err := scanGateway.Handle(ctx, gateway.ScanEvent{Kind: gateway.ScanCheckOut, BorrowerID: testBorrower})
	assert.ErrorIs(t, err, gateway.ErrEmptyBarcode)

	_, err = scanGateway.Handle(ctx, gateway.ScanEvent{Barcode: testBarcode, Kind: gateway.ScanCheckOut})
	assert.ErrorIs(t, err, gateway.ErrMissingBorrower)

	_, err = scanGateway.Handle(ctx, gateway.ScanEvent{Barcode: testBarcode, Kind: "Repair"})
	assert.ErrorIs(t, err, gateway.ErrUnknownScanKind)
}

func registerTestItem(t *testing.T, eventLedger *memledger.MemLedger, fakeClock time.Time) {
	t.Helper()

	registerHandler := registeritem.NewCommandHandler(eventLedger)

	_, err := registerHandler.Handle(t.Context(), registeritem.BuildCommand(testBarcode, "Laser Level", "measuring", fakeClock))
	require.NoError(t, err)
}

func chargeAmount(t *testing.T) decimal.Decimal {
	t.Helper()

	amount, err := decimal.NewFromString("25.00")
	require.NoError(t, err)

	return amount
}
