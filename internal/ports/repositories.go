package ports

import (
	"context"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/domain/kid"
	"lunchbox/internal/domain/leave"
	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the methods for managing user data.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateContact(ctx context.Context, id, name, phone, address string) error
	ListByRole(ctx context.Context, role user.Role) ([]*user.User, error)
}

// KidRepository defines the methods for managing lunch-box registrations.
type KidRepository interface {
	CreateKid(ctx context.Context, k *kid.Kid) error
	GetByID(ctx context.Context, id string) (*kid.Kid, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*kid.Kid, error)
	ListAll(ctx context.Context) ([]*kid.Kid, error)
	Update(ctx context.Context, k *kid.Kid) error
}

// LeaveRepository defines the methods for managing skip days.
type LeaveRepository interface {
	CreateLeave(ctx context.Context, l *leave.Leave) error
	ListByDate(ctx context.Context, date string) ([]LeaveRow, error)
	ListAll(ctx context.Context) ([]LeaveRow, error)
	ExistsFor(ctx context.Context, kidID, date string) (bool, error)
}

// LeaveRow is a leave joined with the kid's name for listing views.
type LeaveRow struct {
	ID        string    `json:"id"`
	KidID     string    `json:"kid_id"`
	KidName   string    `json:"kid_name"`
	LeaveDate string    `json:"leave_date"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderRepository defines the methods for managing order data.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	GetByID(ctx context.Context, id string) (*order.Order, error)
	GetViewByID(ctx context.Context, id string) (*OrderView, error)
	ListViews(ctx context.Context, q OrderListQuery) ([]OrderView, error)
	UpdateStatus(ctx context.Context, o *order.Order) error
	AssignRider(ctx context.Context, orderID, riderID string, assignedAt time.Time) error
	ExistsFor(ctx context.Context, kidID, date string) (bool, error)
	CountByStatusOn(ctx context.Context, date string, status order.Status) (int, error)
	CountCreatedOn(ctx context.Context, date string) (int, error)
}

// OrderListQuery narrows an order listing by day and viewer.
type OrderListQuery struct {
	Date string // optional, YYYY-MM-DD

	// Exactly one of the below is set for role-scoped listings; all empty
	// means an admin listing everything.
	CustomerID string
	RiderID    string // riders also see unassigned Packed orders, minus kids on leave
}

// OrderView is the joined read model served to clients (order + kid + school
// + rider brief), mirroring what the tracking and listing screens render.
type OrderView struct {
	ID            string  `json:"id"`
	CustomerID    string  `json:"customer_id"`
	KidID         string  `json:"kid_id"`
	RiderID       *string `json:"rider_id,omitempty"`
	OrderDate     string  `json:"order_date"`
	Status        string  `json:"status"`
	EstimatedTime *string `json:"estimated_time,omitempty"`

	CustomerName    string   `json:"customer_name"`
	KidName         string   `json:"kid_name"`
	SchoolName      string   `json:"school_name"`
	SchoolAddress   string   `json:"school_address"`
	SchoolLat       float64  `json:"school_lat"`
	SchoolLng       float64  `json:"school_lng"`
	DeliveryAddress string   `json:"delivery_address"`
	RiderName       *string  `json:"rider_name,omitempty"`
	RiderPhone      *string  `json:"rider_phone,omitempty"`
	RiderAvatar     *string  `json:"rider_avatar,omitempty"`
	IsOnLeave       bool     `json:"is_on_leave"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderEventRepository defines the methods for the order audit trail.
type OrderEventRepository interface {
	Append(ctx context.Context, e *order.Event) error
}

// RiderLocationRepository stores the last known rider position plus a
// history archive fed by the location consumer.
type RiderLocationRepository interface {
	UpsertCurrent(ctx context.Context, sample *geo.LocationSample) error
	GetCurrent(ctx context.Context, riderID string) (*geo.LocationSample, error)
	Archive(ctx context.Context, sample *geo.LocationSample) error
	CountActiveSince(ctx context.Context, since time.Time) (int, error)
}
