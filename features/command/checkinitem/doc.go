// Package checkinitem implements the Check In Item use case.
//
// A check-in closes the active loan as Returned and makes the item available
// again. Check-ins without an active loan are rejected and logged for audit.
package checkinitem
