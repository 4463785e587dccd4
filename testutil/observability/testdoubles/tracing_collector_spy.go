package testdoubles

import (
	"context"
	"sync"

	"github.com/toolroom/loantrack/ledger"
)

// TracingCollectorSpy is a TracingCollector implementation that records span
// lifecycles for testing.
type TracingCollectorSpy struct {
	mu       sync.Mutex
	started  []SpySpanRecord
	finished []SpySpanRecord
}

// SpySpanRecord represents a recorded span start or finish.
type SpySpanRecord struct {
	Name   string
	Status string
	Attrs  map[string]string
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy instance.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, ledger.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = append(s.started, SpySpanRecord{Name: name, Attrs: attrs})

	return ctx, &spanContextSpy{name: name}
}

// FinishSpan implements the TracingCollector interface for testing.
func (s *TracingCollectorSpy) FinishSpan(spanCtx ledger.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := ""
	if spy, ok := spanCtx.(*spanContextSpy); ok {
		name = spy.name
	}

	s.finished = append(s.finished, SpySpanRecord{Name: name, Status: status, Attrs: attrs})
}

// StartedSpans returns a copy of all recorded span starts.
func (s *TracingCollectorSpy) StartedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.started...)
}

// FinishedSpans returns a copy of all recorded span finishes.
func (s *TracingCollectorSpy) FinishedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpySpanRecord(nil), s.finished...)
}

// spanContextSpy is the SpanContext handed out by TracingCollectorSpy.
type spanContextSpy struct {
	name string
}

func (*spanContextSpy) SetStatus(string) {}

func (*spanContextSpy) AddAttribute(string, string) {}

var _ ledger.TracingCollector = (*TracingCollectorSpy)(nil)
