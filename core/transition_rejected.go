package core

import (
	"time"
)

// TransitionRejectedEventTypePrefix is the prefix shared by all rejection event types.
// The concrete type carries the rejected command, e.g. "TransitionRejected:CheckOutItem".
const TransitionRejectedEventTypePrefix = "TransitionRejected"

// Rejected command names appended to the prefix.
const (
	RejectedCommandRegisterItem        = "RegisterItem"
	RejectedCommandRetireItem          = "RetireItem"
	RejectedCommandCheckOutItem        = "CheckOutItem"
	RejectedCommandCheckInItem         = "CheckInItem"
	RejectedCommandPlaceOnHold         = "PlaceOnHold"
	RejectedCommandReleaseHold         = "ReleaseHold"
	RejectedCommandMarkLoanComplete    = "MarkLoanComplete"
	RejectedCommandExpireHold          = "ExpireHold"
	RejectedCommandRecordChargeOutcome = "RecordChargeOutcome"
	RejectedCommandWaiveLoan           = "WaiveLoan"
	RejectedCommandFlagLoanForReview   = "FlagLoanForReview"
)

// TransitionRejected represents a scan or command that was not valid for the
// item's current state. It is appended as an audit record so rejected events
// are logged, never silently dropped; the item's state is left unchanged.
type TransitionRejected struct {
	Barcode          BarcodeString
	FailureInfo      string
	OccurredAt       OccurredAtTS
	DynamicEventType string
}

// BuildTransitionRejected creates a new TransitionRejected event for the given command name.
func BuildTransitionRejected(
	barcode BarcodeString,
	rejectedCommand string,
	failureInfo string,
	occurredAt time.Time,
) TransitionRejected {

	return TransitionRejected{
		Barcode:          barcode,
		FailureInfo:      failureInfo,
		OccurredAt:       ToOccurredAt(occurredAt),
		DynamicEventType: TransitionRejectedEventTypePrefix + ":" + rejectedCommand,
	}
}

// EventType returns the dynamic event type identifier.
func (e TransitionRejected) EventType() string {
	return e.DynamicEventType
}

// HasOccurredAt returns when this event occurred.
func (e TransitionRejected) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsFailureEvent returns true since this event records a rejected operation.
func (e TransitionRejected) IsFailureEvent() bool {
	return true
}
