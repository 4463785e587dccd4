package shell

import (
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/toolroom/loantrack/core"
	"github.com/toolroom/loantrack/ledger"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents ledger.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0)

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent ledger.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.ItemRegisteredEventType:
		return unmarshalEvent[core.ItemRegistered](storableEvent.PayloadJSON)

	case core.ItemRetiredEventType:
		return unmarshalEvent[core.ItemRetired](storableEvent.PayloadJSON)

	case core.ItemCheckedOutEventType:
		return unmarshalEvent[core.ItemCheckedOut](storableEvent.PayloadJSON)

	case core.ItemPlacedOnHoldEventType:
		return unmarshalEvent[core.ItemPlacedOnHold](storableEvent.PayloadJSON)

	case core.HoldReleasedEventType:
		return unmarshalEvent[core.HoldReleased](storableEvent.PayloadJSON)

	case core.ItemCheckedInEventType:
		return unmarshalEvent[core.ItemCheckedIn](storableEvent.PayloadJSON)

	case core.LoanMarkedCompleteEventType:
		return unmarshalEvent[core.LoanMarkedComplete](storableEvent.PayloadJSON)

	case core.HoldExpiredEventType:
		return unmarshalEvent[core.HoldExpired](storableEvent.PayloadJSON)

	case core.ChargeSucceededEventType:
		return unmarshalEvent[core.ChargeSucceeded](storableEvent.PayloadJSON)

	case core.ChargeAttemptFailedEventType:
		return unmarshalEvent[core.ChargeAttemptFailed](storableEvent.PayloadJSON)

	case core.LoanFlaggedForReviewEventType:
		return unmarshalEvent[core.LoanFlaggedForReview](storableEvent.PayloadJSON)

	case core.ChargeWaivedEventType:
		return unmarshalEvent[core.ChargeWaived](storableEvent.PayloadJSON)

	default:
		if strings.HasPrefix(storableEvent.EventType, core.TransitionRejectedEventTypePrefix) {
			return unmarshalEvent[core.TransitionRejected](storableEvent.PayloadJSON)
		}
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

// unmarshalEvent decodes a payload into the concrete event type.
// jsoniter honors json.Unmarshaler implementations, so decimal amounts round-trip exactly.
func unmarshalEvent[T core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(T)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
