package core

import (
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// BarcodeString represents an item's barcode identity
type BarcodeString = string

// BorrowerIDString represents a borrower identifier
type BorrowerIDString = string

// LoanIDString represents a loan episode identifier
type LoanIDString = string

// RequestIDString represents a billing request identifier
type RequestIDString = string

// EventTypeString represents an event type identifier
type EventTypeString = string

// OccurredAtTS represents when an event occurred
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
