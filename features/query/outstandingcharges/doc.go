// Package outstandingcharges implements the Outstanding Charges query use case.
//
// It lists every charge that has been requested but has no terminal billing
// outcome yet, across all items, oldest request first. The billing reconciler
// and operator dashboards both read from this projection.
package outstandingcharges
