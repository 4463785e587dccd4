// Package core contains the domain events and the pure state machine for
// tracking equipment-room items loaned out via barcode scans.
//
// Events represent meaningful business occurrences like ItemCheckedOut and
// ChargeSucceeded rather than generic create/update operations. Each loan
// episode is the slice of a barcode's event stream between an ItemCheckedOut
// and its closing event (ItemCheckedIn or ChargeSucceeded).
//
// All domain events implement the DomainEvent interface with EventType() and
// HasOccurredAt() methods for event sourcing integration. ReplayItemState is
// the canonical fold from a barcode's history to its current lifecycle state;
// every Decide function derives its view of the world from the same history,
// so replaying the ledger always reconstructs the current state.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
