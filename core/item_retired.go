package core

import (
	"time"
)

// ItemRetiredEventType is the event type identifier.
const ItemRetiredEventType = "ItemRetired"

// ItemRetired represents when an item is withdrawn from the registry.
// Items are never physically deleted, only marked retired.
type ItemRetired struct {
	Barcode    BarcodeString
	OccurredAt OccurredAtTS
}

// BuildItemRetired creates a new ItemRetired event.
func BuildItemRetired(barcode BarcodeString, occurredAt time.Time) ItemRetired {
	return ItemRetired{
		Barcode:    barcode,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e ItemRetired) EventType() string {
	return ItemRetiredEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemRetired) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns false since this event represents a successful operation.
func (e ItemRetired) IsFailureEvent() bool {
	return false
}
