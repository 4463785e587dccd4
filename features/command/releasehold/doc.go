// Package releasehold implements the Release Hold use case.
//
// Releasing a hold puts the loan back into CheckedOut before the grace period
// expires it into a charge.
package releasehold
