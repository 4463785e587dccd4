// Package overdueholds implements the Overdue Holds query use case.
//
// It finds every item that has been sitting on hold past the configured grace
// period. The hold sweeper runs this query on an interval and raises an
// ExpireHold command for each row it gets back.
package overdueholds
