package order

import (
	"errors"
	"strings"
	"time"
)

// Order is the domain entity corresponding to the `orders` table.
type Order struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Actors
	CustomerID string
	KidID      string
	RiderID    *string // nil until a rider accepts or an admin assigns one

	// Core state
	OrderDate string // delivery day, YYYY-MM-DD
	Status    Status

	// Lifecycle timestamps
	AcceptedAt       *time.Time
	PickedUpAt       *time.Time
	OutForDeliveryAt *time.Time
	DeliveredAt      *time.Time

	// Additional info
	EstimatedTime *string // e.g. "12:45 PM", set by the rider
}

var (
	ErrCustomerRequired  = errors.New("customer id is required")
	ErrKidRequired       = errors.New("kid id is required")
	ErrOrderDateRequired = errors.New("order date is required")
	ErrRiderRequired     = errors.New("rider id is required")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrRiderMismatch     = errors.New("order is bound to another rider")
	ErrNotFound          = errors.New("order not found")
)

// NewOrder creates a new order in Packed state for a given kid and day.
func NewOrder(customerID, kidID, orderDate string) (*Order, error) {
	if customerID = strings.TrimSpace(customerID); customerID == "" {
		return nil, ErrCustomerRequired
	}
	if kidID = strings.TrimSpace(kidID); kidID == "" {
		return nil, ErrKidRequired
	}
	if orderDate = strings.TrimSpace(orderDate); orderDate == "" {
		return nil, ErrOrderDateRequired
	}
	if _, err := time.Parse("2006-01-02", orderDate); err != nil {
		return nil, ErrOrderDateRequired
	}

	now := time.Now().UTC()
	return &Order{
		CreatedAt:  now,
		UpdatedAt:  now,
		CustomerID: customerID,
		KidID:      kidID,
		OrderDate:  orderDate,
		Status:     StatusPacked,
	}, nil
}

// Accept transitions Packed -> Accepted and binds the accepting rider.
// If an admin pre-assigned a rider, only that rider may accept.
func (o *Order) Accept(riderID string) error {
	if riderID = strings.TrimSpace(riderID); riderID == "" {
		return ErrRiderRequired
	}
	if !o.Status.CanTransitionTo(StatusAccepted) {
		return ErrInvalidTransition
	}
	if o.RiderID != nil && *o.RiderID != riderID {
		return ErrRiderMismatch
	}

	o.RiderID = &riderID
	now := time.Now().UTC()
	o.AcceptedAt = &now
	o.setStatus(StatusAccepted)
	return nil
}

// MarkPickedUp transitions Accepted -> Picked Up.
func (o *Order) MarkPickedUp() error {
	if o.RiderID == nil || *o.RiderID == "" {
		return ErrRiderRequired
	}
	if !o.Status.CanTransitionTo(StatusPickedUp) {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	o.PickedUpAt = &now
	o.setStatus(StatusPickedUp)
	return nil
}

// MarkOutForDelivery transitions Picked Up -> Out for Delivery. The optional
// estimatedTime is the rider's ETA shown to the customer.
func (o *Order) MarkOutForDelivery(estimatedTime string) error {
	if o.RiderID == nil || *o.RiderID == "" {
		return ErrRiderRequired
	}
	if !o.Status.CanTransitionTo(StatusOutForDelivery) {
		return ErrInvalidTransition
	}
	if et := strings.TrimSpace(estimatedTime); et != "" {
		o.EstimatedTime = &et
	}
	now := time.Now().UTC()
	o.OutForDeliveryAt = &now
	o.setStatus(StatusOutForDelivery)
	return nil
}

// MarkDelivered transitions Out for Delivery -> Delivered (terminal).
func (o *Order) MarkDelivered() error {
	if o.RiderID == nil || *o.RiderID == "" {
		return ErrRiderRequired
	}
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	o.DeliveredAt = &now
	o.setStatus(StatusDelivered)
	return nil
}

// Advance applies the requested status as a single transition, dispatching to
// the specific mark method. riderID is the acting rider for Accepted (and is
// checked against the bound rider for every later stage); estimatedTime is
// only consulted for Out for Delivery.
func (o *Order) Advance(requested Status, riderID, estimatedTime string) error {
	switch requested {
	case StatusAccepted:
		return o.Accept(riderID)
	case StatusPickedUp:
		return o.MarkPickedUp()
	case StatusOutForDelivery:
		return o.MarkOutForDelivery(estimatedTime)
	case StatusDelivered:
		return o.MarkDelivered()
	default:
		// Packed is the initial state, never a transition target.
		return ErrInvalidTransition
	}
}

// AssignRider binds (or overrides) the rider while the order is still Packed.
// This is the explicit administrative side-channel; it does not advance status.
func (o *Order) AssignRider(riderID string) error {
	if riderID = strings.TrimSpace(riderID); riderID == "" {
		return ErrRiderRequired
	}
	if o.Status != StatusPacked {
		return ErrInvalidTransition
	}
	o.RiderID = &riderID
	o.touch()
	return nil
}

// BoundTo reports whether the order's rider binding matches riderID.
func (o *Order) BoundTo(riderID string) bool {
	return o.RiderID != nil && *o.RiderID == riderID
}

// ----- internal helpers -----

func (o *Order) setStatus(status Status) {
	o.Status = status
	o.touch()
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
