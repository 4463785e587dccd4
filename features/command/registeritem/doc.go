// Package registeritem implements the Register Item use case.
//
// Registration provisions a barcode in the item registry. Re-registering an
// existing barcode is a no-op; re-registering a retired barcode puts the item
// back into circulation.
package registeritem
