package gateway

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DedupWindow_EvictsOldestWhenFull(t *testing.T) {
	window := newDedupWindow(3)

	for i := 0; i < 4; i++ {
		window.Remember(fmt.Sprintf("token-%d", i), scanOutcome{result: ScanResult{Barcode: "BC600"}})
	}

	assert.Equal(t, 3, window.Len())

	_, ok := window.Lookup("token-0")
	assert.False(t, ok, "Oldest token should have been evicted")

	_, ok = window.Lookup("token-3")
	assert.True(t, ok)
}

func Test_DedupWindow_RememberSameTokenDoesNotGrow(t *testing.T) {
	window := newDedupWindow(3)

	window.Remember("token-0", scanOutcome{result: ScanResult{State: "CheckedOut"}})
	window.Remember("token-0", scanOutcome{result: ScanResult{State: "Available"}})

	assert.Equal(t, 1, window.Len())

	outcome, ok := window.Lookup("token-0")
	assert.True(t, ok)
	assert.Equal(t, "Available", outcome.result.State)
}
