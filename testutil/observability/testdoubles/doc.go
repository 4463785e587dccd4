// Package testdoubles provides test doubles (spies) for observability interfaces.
//
// It contains spy implementations for the observability interfaces used across
// the loan tracking core:
//   - MetricsCollectorSpy: captures metric recording calls for verification
//   - ContextualLoggerSpy: captures structured logging with context
//
// These test doubles enable testing of observability instrumentation without
// requiring actual telemetry backends.
package testdoubles
