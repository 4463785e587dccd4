// Package checkoutitem implements the Check Out Item use case.
//
// A checkout opens a new loan episode for an available item. It follows the
// Command-Query-Decide-Append pattern with proper separation between
// infrastructure concerns (CommandHandler) and pure business logic (Decide function).
//
// The business logic enforces the lifecycle rules: the item must be registered,
// not retired, and not currently out with another borrower or awaiting payment.
// Rejected checkouts append a TransitionRejected audit event so invalid scans
// are never silently dropped.
package checkoutitem
