package gateway

import (
	"sync"
)

// scanOutcome is what the window remembers for a token: either the result of
// an accepted scan or the business rejection it produced. Transient failures
// are never cached, so a redelivered token retries them.
type scanOutcome struct {
	result ScanResult
	err    error
}

// dedupWindow is a bounded map of recently seen idempotency tokens and the
// outcome each one produced. When the window is full the oldest token is
// evicted, so a token redelivered much later is treated as a fresh scan and
// absorbed at the decide level instead.
type dedupWindow struct {
	mu       sync.Mutex
	capacity int
	order    []string
	outcomes map[string]scanOutcome
}

func newDedupWindow(capacity int) *dedupWindow {
	return &dedupWindow{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		outcomes: make(map[string]scanOutcome, capacity),
	}
}

// Lookup returns the cached outcome for a token, if the token is still in the window.
func (w *dedupWindow) Lookup(token string) (scanOutcome, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	outcome, ok := w.outcomes[token]

	return outcome, ok
}

// Remember stores the outcome for a token, evicting the oldest entry when full.
func (w *dedupWindow) Remember(token string, outcome scanOutcome) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.outcomes[token]; ok {
		w.outcomes[token] = outcome
		return
	}

	if len(w.order) >= w.capacity {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.outcomes, oldest)
	}

	w.order = append(w.order, token)
	w.outcomes[token] = outcome
}

// Len returns the number of tokens currently held in the window.
func (w *dedupWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.order)
}
