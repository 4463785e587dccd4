// Package memledger provides an in-memory ledger for tests.
//
// It mirrors the Postgres engine's observable behavior: filters match event
// types with OR and payload predicates with OR, Query returns events in
// append order together with the stream's max sequence number, and Append
// fails with ErrConcurrencyConflict when the stream moved past the expected
// sequence number.
package memledger

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/toolroom/loantrack/ledger"
)

type sequencedEvent struct {
	sequenceNumber ledger.MaxSequenceNumberUint
	event          ledger.StorableEvent
}

// MemLedger is a thread-safe in-memory implementation of the ledger's
// Query/Append contract. The zero value is not usable; use New.
type MemLedger struct {
	mu     sync.Mutex
	events []sequencedEvent
	nextSN ledger.MaxSequenceNumberUint
}

func New() *MemLedger {
	return &MemLedger{nextSN: 1}
}

// Query returns all events matching the filter in append order, plus the max
// sequence number among them.
func (m *MemLedger) Query(_ context.Context, filter ledger.Filter) (
	ledger.StorableEvents,
	ledger.MaxSequenceNumberUint,
	error,
) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matching, maxSequenceNumber := m.matchingEvents(filter)

	return matching, maxSequenceNumber, nil
}

// Append appends the event(s) if the stream described by the filter has not
// moved past expectedMaxSequenceNumber, otherwise it returns
// ledger.ErrConcurrencyConflict.
func (m *MemLedger) Append(
	_ context.Context,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
	event ledger.StorableEvent,
	additionalEvents ...ledger.StorableEvent,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, currentMax := m.matchingEvents(filter)
	if currentMax != expectedMaxSequenceNumber {
		return ledger.ErrConcurrencyConflict
	}

	for _, evt := range append([]ledger.StorableEvent{event}, additionalEvents...) {
		m.events = append(m.events, sequencedEvent{sequenceNumber: m.nextSN, event: evt})
		m.nextSN++
	}

	return nil
}

// AllEvents returns every stored event in append order, for test assertions.
func (m *MemLedger) AllEvents() ledger.StorableEvents {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(ledger.StorableEvents, 0, len(m.events))
	for _, se := range m.events {
		all = append(all, se.event)
	}

	return all
}

func (m *MemLedger) matchingEvents(filter ledger.Filter) (ledger.StorableEvents, ledger.MaxSequenceNumberUint) {
	var maxSequenceNumber ledger.MaxSequenceNumberUint

	matching := make(ledger.StorableEvents, 0)

	for _, se := range m.events {
		if !eventMatchesFilter(se.event, filter) {
			continue
		}

		matching = append(matching, se.event)
		maxSequenceNumber = se.sequenceNumber
	}

	return matching, maxSequenceNumber
}

func eventMatchesFilter(event ledger.StorableEvent, filter ledger.Filter) bool {
	if filter.IsEmpty() {
		return true
	}

	if len(filter.EventTypes()) > 0 && !containsEventType(filter.EventTypes(), event.EventType) {
		return false
	}

	if len(filter.Predicates()) > 0 && !anyPredicateMatches(filter.Predicates(), event.PayloadJSON) {
		return false
	}

	return true
}

func containsEventType(eventTypes []ledger.FilterEventTypeString, eventType string) bool {
	for _, et := range eventTypes {
		if et == eventType {
			return true
		}
	}

	return false
}

// anyPredicateMatches emulates JSONB containment for top-level string values.
func anyPredicateMatches(predicates []ledger.FilterPredicate, payloadJSON []byte) bool {
	var payload map[string]any
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
		return false
	}

	for _, predicate := range predicates {
		val, ok := payload[predicate.Key()]
		if !ok {
			continue
		}

		if strVal, isString := val.(string); isString && strVal == predicate.Val() {
			return true
		}
	}

	return false
}
