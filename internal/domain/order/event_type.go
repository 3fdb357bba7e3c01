package order

import (
	"errors"
	"strings"
)

// EventType corresponds to the values in the `order_events` audit table.
type EventType string

const (
	EventOrderCreated    EventType = "ORDER_CREATED"
	EventOrderAccepted   EventType = "ORDER_ACCEPTED"
	EventOrderPickedUp   EventType = "ORDER_PICKED_UP"
	EventOutForDelivery  EventType = "ORDER_OUT_FOR_DELIVERY"
	EventOrderDelivered  EventType = "ORDER_DELIVERED"
	EventRiderAssigned   EventType = "RIDER_ASSIGNED"
	EventStatusChanged   EventType = "STATUS_CHANGED"
	EventLocationUpdated EventType = "LOCATION_UPDATED"
)

var ErrInvalidEventType = errors.New("invalid order event type")

// ParseEventType normalizes (uppercases+trims) and validates an event type string.
func ParseEventType(input string) (EventType, error) {
	eventType := EventType(strings.ToUpper(strings.TrimSpace(input)))
	if eventType.Valid() {
		return eventType, nil
	}
	return "", ErrInvalidEventType
}

// Valid reports whether eventType is one of the allowed event type constants.
func (eventType EventType) Valid() bool {
	switch eventType {
	case EventOrderCreated,
		EventOrderAccepted,
		EventOrderPickedUp,
		EventOutForDelivery,
		EventOrderDelivered,
		EventRiderAssigned,
		EventStatusChanged,
		EventLocationUpdated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the EventType.
func (eventType EventType) String() string {
	return string(eventType)
}

// EventTypeFor returns the specific event name recorded for a status.
func EventTypeFor(status Status) EventType {
	switch status {
	case StatusAccepted:
		return EventOrderAccepted
	case StatusPickedUp:
		return EventOrderPickedUp
	case StatusOutForDelivery:
		return EventOutForDelivery
	case StatusDelivered:
		return EventOrderDelivered
	default:
		return EventStatusChanged
	}
}
