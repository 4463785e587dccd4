package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_BackoffDelay_GrowsExponentiallyWithBoundedJitter(t *testing.T) {
	base := 100 * time.Millisecond

	for attempts := 1; attempts <= 4; attempts++ {
		expected := base * time.Duration(1<<attempts)

		delay := backoffDelay(base, attempts)

		assert.GreaterOrEqual(t, delay, expected)
		assert.Less(t, delay, expected+time.Duration(float64(expected)*backoffJitterFactor)+time.Millisecond)
	}
}
