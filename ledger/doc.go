// Package ledger defines the storage contract for the append-only loan ledger.
//
// Every state transition of an inventory item is recorded as an immutable
// event in a per-barcode "dynamic stream". Streams are not physical
// partitions: they are defined by a Filter (event types plus payload
// predicates) evaluated at query time, and writes are guarded by the maximum
// sequence number the caller observed when it queried. If any matching event
// was appended in between, Append fails with ErrConcurrencyConflict and the
// caller must re-read and decide again.
//
// The package is storage-agnostic; the Postgres implementation lives in
// ledger/postgresengine.
package ledger
