package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolroom/loantrack/ledger"
	"github.com/toolroom/loantrack/shell"
)

func Test_RetryWithExponentialBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(t.Context(), func(_ context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, metrics.Attempts)
	assert.Equal(t, "none", metrics.LastErrorType)
	assert.False(t, metrics.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetriesOnlyConcurrencyConflicts(t *testing.T) {
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(t.Context(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return ledger.ErrConcurrencyConflict
		}
		return nil
	},
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, metrics.Attempts)
}

func Test_RetryWithExponentialBackoff_FailsFastOnPermanentErrors(t *testing.T) {
	permanentErr := errors.New("table does not exist")
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(t.Context(), func(_ context.Context) error {
		calls++
		return permanentErr
	})

	assert.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "other", metrics.LastErrorType)
	assert.False(t, metrics.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_ExhaustsAttemptsOnPersistentConflict(t *testing.T) {
	calls := 0

	metrics, err := shell.RetryWithExponentialBackoff(t.Context(), func(_ context.Context) error {
		calls++
		return ledger.ErrConcurrencyConflict
	},
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
	)

	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "concurrency_conflict", metrics.LastErrorType)
	assert.True(t, metrics.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	calls := 0

	_, err := shell.RetryWithExponentialBackoff(ctx, func(_ context.Context) error {
		calls++
		cancel()
		return ledger.ErrConcurrencyConflict
	},
		shell.WithBaseDelay(time.Second),
	)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
