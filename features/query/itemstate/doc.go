// Package itemstate implements the Item State query use case.
//
// The item's current state is not cached anywhere; it is replayed from the
// loan ledger on every query, keeping the ledger the single source of truth.
package itemstate
