// Package placeonhold implements the Place On Hold use case.
//
// A hold marks a loan whose return is delayed without triggering a charge yet.
// The periodic sweep expires holds that outlive the grace period.
package placeonhold
