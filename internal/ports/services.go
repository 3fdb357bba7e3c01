package ports

import (
	"context"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/domain/kid"
	"lunchbox/internal/domain/leave"
	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/contracts"
)

// CreateOrderInput is what a customer submits to place a lunch-box order.
type CreateOrderInput struct {
	CustomerID string
	KidID      string
	OrderDate  string // YYYY-MM-DD
}

// AdvanceStatusInput carries a requested status change plus the actor making
// it, so authorization and the transition chain are enforced in one place.
type AdvanceStatusInput struct {
	OrderID       string
	Requested     order.Status
	ActorID       string
	ActorRole     user.Role
	EstimatedTime string // optional, only meaningful for Out for Delivery
}

// StatusChangeResult is returned after a successful transition so callers can
// fan the change out to room subscribers and the broker.
type StatusChangeResult struct {
	Order     *order.Order
	Previous  order.Status
	EventType order.EventType
}

// OrderService is the application façade over order lifecycle operations.
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*order.Order, error)
	GetOrder(ctx context.Context, orderID string) (*OrderView, error)
	ListOrders(ctx context.Context, actorID string, actorRole user.Role, date string) ([]OrderView, error)
	AdvanceStatus(ctx context.Context, in AdvanceStatusInput) (*StatusChangeResult, error)
	AssignRider(ctx context.Context, orderID, riderID, actorID string, actorRole user.Role) (*order.Order, error)
	RecordRiderLocation(ctx context.Context, sample *geo.LocationSample) (*geo.LocationSample, error)

	// CanJoinRoom reports whether the actor may subscribe to the order's room.
	CanJoinRoom(ctx context.Context, orderID, actorID string, actorRole user.Role) error
}

// RegisterInput is a signup request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
	Phone    string
	Address  string
}

// AuthResult bundles the issued token with the authenticated user.
type AuthResult struct {
	Token string
	User  *user.User
}

// AuthService handles signup and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// KidInput carries the fields of a lunch-box registration form.
type KidInput struct {
	Name            string
	SchoolName      string
	SchoolAddress   string
	SchoolLat       *float64
	SchoolLng       *float64
	ParentPhone     string
	DeliveryAddress string
}

// AccountService covers the profile, kids and skip-day screens.
type AccountService interface {
	Profile(ctx context.Context, userID string) (*user.User, error)
	UpdateProfile(ctx context.Context, userID, name, phone, address string) (*user.User, error)

	AddKid(ctx context.Context, customerID string, in KidInput) (*kid.Kid, error)
	ListKids(ctx context.Context, actorID string, actorRole user.Role) ([]*kid.Kid, error)
	ListAllKids(ctx context.Context, actorRole user.Role) ([]*kid.Kid, error)
	UpdateKid(ctx context.Context, kidID, actorID string, actorRole user.Role, in KidInput) (*kid.Kid, error)

	MarkLeave(ctx context.Context, kidID, leaveDate, actorID string, actorRole user.Role) (*leave.Leave, error)
	ListLeaves(ctx context.Context, actorID string, actorRole user.Role, date string) ([]LeaveRow, error)
}

// AdminOverview is the dashboard summary for one day.
type AdminOverview struct {
	Date         string         `json:"date"`
	TotalOrders  int            `json:"total_orders"`
	StatusCounts map[string]int `json:"status_counts"`
	RidersOnline int            `json:"riders_online"`
	KidsOnLeave  int            `json:"kids_on_leave"`
}

// AdminService serves the rider roster and the dashboard counters.
type AdminService interface {
	ListRiders(ctx context.Context) ([]*user.User, error)
	Overview(ctx context.Context, date string) (*AdminOverview, error)
}

// Publisher abstracts the broker so services can emit without knowing AMQP.
type Publisher interface {
	PublishOrderStatus(ctx context.Context, body []byte, routingKey string) error
	PublishLocation(ctx context.Context, body []byte) error
}

// RoomBroadcaster delivers events to the order's live subscribers. Delivery is
// best effort: a slow or dead subscriber never blocks or fails the operation.
type RoomBroadcaster interface {
	BroadcastStatus(ctx context.Context, orderID string, msg contracts.WSStatusUpdate)
	BroadcastLocation(ctx context.Context, orderID string, msg contracts.WSLocationUpdate)
}
