// Package flagloanforreview implements the Flag Loan For Review use case.
//
// After the billing reconciler exhausts its retry budget the loan is not
// abandoned: it stays AwaitingPayment and this command marks it for manual
// intervention by an operator.
package flagloanforreview
