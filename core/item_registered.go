package core

import (
	"time"
)

// ItemRegisteredEventType is the event type identifier.
const ItemRegisteredEventType = "ItemRegistered"

// ItemRegistered represents when an inventory item is provisioned in the registry.
type ItemRegistered struct {
	Barcode    BarcodeString
	Name       string
	Category   string
	OccurredAt OccurredAtTS
}

// BuildItemRegistered creates a new ItemRegistered event.
func BuildItemRegistered(barcode BarcodeString, name string, category string, occurredAt time.Time) ItemRegistered {
	return ItemRegistered{
		Barcode:    barcode,
		Name:       name,
		Category:   category,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ItemRegistered) EventType() string {
	return ItemRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ItemRegistered) IsFailureEvent() bool {
	return false
}
