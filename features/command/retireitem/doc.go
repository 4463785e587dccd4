// Package retireitem implements the Retire Item use case.
//
// Items are never physically deleted from the registry; retiring marks them
// withdrawn. An item with an open loan cannot be retired.
package retireitem
