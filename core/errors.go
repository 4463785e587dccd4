package core

import (
	"errors"
)

// Sentinel errors for business rule violations. Decide functions wrap them so
// callers can classify rejections with errors.Is without parsing messages.
var (
	// ErrItemNotFound is returned when no item is registered under the barcode.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidTransition is returned when an event is not valid for the item's current state.
	ErrInvalidTransition = errors.New("invalid transition")
)
