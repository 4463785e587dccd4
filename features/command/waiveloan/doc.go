// Package waiveloan implements the Waive Loan use case.
//
// An operator waives the outstanding charge on a loan, usually after billing
// retries were exhausted and the loan was flagged for manual review. The loan
// closes as Waived and the item becomes available again.
package waiveloan
