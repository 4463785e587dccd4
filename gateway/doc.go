// Package gateway is the entry point for barcode scans.
//
// It validates incoming scan events, absorbs redelivered idempotency tokens
// through a bounded in-memory window, and routes each scan to the matching
// command handler. A scan is acknowledged only after its event is durably
// appended to the loan ledger.
package gateway
