package gateway

import (
	"errors"
	"time"

	"github.com/toolroom/loantrack/core"
)

// ScanKind identifies what a barcode scan at the counter means.
type ScanKind string

// Scan kinds accepted by the gateway.
const (
	ScanCheckOut     ScanKind = "CheckOut"
	ScanCheckIn      ScanKind = "CheckIn"
	ScanMarkComplete ScanKind = "MarkComplete"
	ScanPlaceOnHold  ScanKind = "PlaceOnHold"
	ScanReleaseHold  ScanKind = "ReleaseHold"
)

// Validation errors returned before any command is dispatched.
var (
	ErrUnknownScanKind = errors.New("unknown scan kind")
	ErrEmptyBarcode    = errors.New("barcode must not be empty")
	ErrMissingBorrower = errors.New("checkout scan requires a borrower id")
)

// ScanEvent represents one barcode scan delivered to the gateway.
// The IdempotencyToken is assigned by the scanning device; redelivery of the
// same token is absorbed without touching the state machine.
type ScanEvent struct {
	Barcode          core.BarcodeString
	Kind             ScanKind
	BorrowerID       core.BorrowerIDString
	OccurredAt       time.Time
	IdempotencyToken string
}

// ScanResult represents the gateway's answer to a scan: the item's state
// after the scan was applied, plus markers for absorbed duplicates.
type ScanResult struct {
	Barcode core.BarcodeString
	State   string

	// Duplicate is true when the idempotency token was seen before and the
	// cached result was returned without invoking the state machine.
	Duplicate bool

	// Idempotent is true when the command was dispatched but produced no
	// state change, e.g. a double scan with a fresh token.
	Idempotent bool
}

func (s ScanEvent) validate() error {
	if s.Barcode == "" {
		return ErrEmptyBarcode
	}

	switch s.Kind {
	case ScanCheckOut:
		if s.BorrowerID == "" {
			return ErrMissingBorrower
		}
	case ScanCheckIn, ScanMarkComplete, ScanPlaceOnHold, ScanReleaseHold:
		// no extra fields required, the active loan identifies the borrower
	default:
		return ErrUnknownScanKind
	}

	return nil
}
