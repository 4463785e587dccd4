// Package loanhistory implements the Loan History query use case.
//
// It reconstructs every checkout-to-close episode of an item from the ledger,
// including the ordered transition sequence and terminal outcome of each loan.
package loanhistory
