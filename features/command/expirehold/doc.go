// Package expirehold implements the Expire Hold use case.
//
// The periodic sweep raises this command for holds that outlived the grace
// period. The decision re-checks the loan's state, so a hold released or
// returned between the sweep's read and this command is handled safely.
package expirehold
