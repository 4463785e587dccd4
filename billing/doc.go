// Package billing reconciles loans awaiting payment with the external billing
// collaborator.
//
// Charge requests derived from the ledger are persisted in a durable queue,
// issued with exponential backoff, and their outcomes fed back into the state
// machine as commands. Requests that exhaust their attempts are flagged for
// manual review and never silently abandoned. The package also hosts the hold
// sweeper, which expires holds past the grace period on a periodic tick.
package billing
