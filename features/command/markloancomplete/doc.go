// Package markloancomplete implements the Mark Loan Complete use case.
//
// Marking a loan complete means the borrower's task is finished but the item
// has not come back. The loan moves to AwaitingPayment and a charge is
// requested from the billing collaborator under a request id minted exactly
// once for this transition.
package markloancomplete
