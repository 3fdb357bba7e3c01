package order

import (
	"errors"
	"strings"
)

// Status is an order status as stored in the `orders` table.
// Statuses form a fixed delivery chain; every legal transition moves to the
// immediate successor, never backward and never skipping a stage.
type Status string

const (
	StatusPacked         Status = "Packed"
	StatusAccepted       Status = "Accepted"
	StatusPickedUp       Status = "Picked Up"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
)

var ErrInvalidStatus = errors.New("invalid order status")

// statusChain is the full delivery sequence in order.
var statusChain = []Status{
	StatusPacked,
	StatusAccepted,
	StatusPickedUp,
	StatusOutForDelivery,
	StatusDelivered,
}

// Statuses returns the delivery chain in order.
func Statuses() []Status {
	out := make([]Status, len(statusChain))
	copy(out, statusChain)
	return out
}

// ParseStatus normalizes (trims, case-insensitive) and validates a status string.
func ParseStatus(in string) (Status, error) {
	in = strings.TrimSpace(in)
	for _, s := range statusChain {
		if strings.EqualFold(in, string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed status constants.
func (status Status) Valid() bool {
	for _, s := range statusChain {
		if status == s {
			return true
		}
	}
	return false
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// Next returns the immediate successor in the delivery chain.
// ok is false for Delivered (terminal) and for unknown statuses.
func (status Status) Next() (next Status, ok bool) {
	for i, s := range statusChain {
		if status == s {
			if i+1 < len(statusChain) {
				return statusChain[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// CanTransitionTo reports whether next is the immediate successor of status.
// Repeating the current status or moving backward is never allowed.
func (status Status) CanTransitionTo(next Status) bool {
	succ, ok := status.Next()
	return ok && succ == next
}

// Terminal indicates if the status is the end of the delivery chain.
func (status Status) Terminal() bool {
	return status == StatusDelivered
}
