package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolroom/loantrack/ledger"
)

//nolint:funlen
func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() ledger.Filter
		validate func(t *testing.T, filter ledger.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() ledger.Filter {
				return ledger.BuildEventFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f ledger.Filter) {
				assert.True(t, f.IsEmpty())
				assert.Empty(t, f.EventTypes())
				assert.Empty(t, f.Predicates())
			},
		},
		{
			name: "single_event_type_filter",
			build: func() ledger.Filter {
				return ledger.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ItemCheckedOut").
					Finalize()
			},
			validate: func(t *testing.T, f ledger.Filter) {
				assert.Equal(t, []string{"ItemCheckedOut"}, f.EventTypes())
				assert.Empty(t, f.Predicates())
			},
		},
		{
			name: "multiple_event_types_filter",
			build: func() ledger.Filter {
				return ledger.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ItemCheckedOut", "ItemCheckedIn", "ItemPlacedOnHold").
					Finalize()
			},
			validate: func(t *testing.T, f ledger.Filter) {
				assert.Equal(t, []string{"ItemCheckedIn", "ItemCheckedOut", "ItemPlacedOnHold"}, f.EventTypes())
			},
		},
		{
			name: "single_predicate_filter",
			build: func() ledger.Filter {
				return ledger.BuildEventFilter().
					Matching().
					AnyPredicateOf(ledger.P("Barcode", "TL-000123")).
					Finalize()
			},
			validate: func(t *testing.T, f ledger.Filter) {
				assert.Empty(t, f.EventTypes())
				assert.Len(t, f.Predicates(), 1)
				assert.Equal(t, "Barcode", f.Predicates()[0].Key())
				assert.Equal(t, "TL-000123", f.Predicates()[0].Val())
			},
		},
		{
			name: "event_types_and_predicates_filter",
			build: func() ledger.Filter {
				return ledger.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ItemCheckedOut", "ItemCheckedIn").
					AndAnyPredicateOf(ledger.P("Barcode", "TL-000123"), ledger.P("LoanID", "some-loan-id")).
					Finalize()
			},
			validate: func(t *testing.T, f ledger.Filter) {
				assert.Equal(t, []string{"ItemCheckedIn", "ItemCheckedOut"}, f.EventTypes())
				assert.Len(t, f.Predicates(), 2)
				assert.False(t, f.IsEmpty())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func Test_FilterBuilder_SanitizesInput(t *testing.T) {
	t.Run("drops_empty_event_types_and_deduplicates", func(t *testing.T) {
		f := ledger.BuildEventFilter().
			Matching().
			AnyEventTypeOf("ItemCheckedOut", "", "ItemCheckedOut", "ItemCheckedIn").
			Finalize()

		assert.Equal(t, []string{"ItemCheckedIn", "ItemCheckedOut"}, f.EventTypes())
	})

	t.Run("drops_partial_predicates_and_deduplicates", func(t *testing.T) {
		f := ledger.BuildEventFilter().
			Matching().
			AnyPredicateOf(
				ledger.P("Barcode", "TL-000123"),
				ledger.P("", "TL-000123"),
				ledger.P("Barcode", ""),
				ledger.P("Barcode", "TL-000123"),
			).
			Finalize()

		assert.Len(t, f.Predicates(), 1)
		assert.Equal(t, "Barcode", f.Predicates()[0].Key())
	})

	t.Run("all_empty_input_yields_empty_filter", func(t *testing.T) {
		f := ledger.BuildEventFilter().
			Matching().
			AnyEventTypeOf("").
			AndAnyPredicateOf(ledger.P("", "")).
			Finalize()

		assert.True(t, f.IsEmpty())
	})
}

func Test_ConsistencyLevel_ContextRoundTrip(t *testing.T) {
	ctx := t.Context()

	assert.Equal(t, ledger.StrongConsistency, ledger.GetConsistencyLevel(ctx))

	ctx = ledger.WithEventualConsistency(ctx)
	assert.Equal(t, ledger.EventualConsistency, ledger.GetConsistencyLevel(ctx))

	ctx = ledger.WithStrongConsistency(ctx)
	assert.Equal(t, ledger.StrongConsistency, ledger.GetConsistencyLevel(ctx))

	assert.Equal(t, "strong", ledger.StrongConsistency.String())
	assert.Equal(t, "eventual", ledger.EventualConsistency.String())
}
