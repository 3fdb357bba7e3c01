package service

import (
	"errors"
	"strings"

	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// Service-level errors surfaced to handlers.
var (
	ErrForbidden      = errors.New("actor is not allowed to perform this action")
	ErrNotYourKid     = errors.New("kid does not belong to this customer")
	ErrKidOnLeave     = errors.New("kid is on leave for this date")
	ErrDuplicateOrder = errors.New("order already exists for this kid and date")
	ErrOrderClosed    = errors.New("order is already delivered")
)

// orderService implements ports.OrderService: lifecycle, room authorization
// and rider tracking, with every status change funneled through AdvanceStatus.
type orderService struct {
	logger       *logger.Logger
	uow          ports.UnitOfWork
	orderRepo    ports.OrderRepository
	eventRepo    ports.OrderEventRepository
	userRepo     ports.UserRepository
	kidRepo      ports.KidRepository
	leaveRepo    ports.LeaveRepository
	locationRepo ports.RiderLocationRepository
	pub          ports.Publisher
	rooms        ports.RoomBroadcaster
}

// NewOrderService creates the order service with the provided dependencies.
func NewOrderService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	orderRepo ports.OrderRepository,
	eventRepo ports.OrderEventRepository,
	userRepo ports.UserRepository,
	kidRepo ports.KidRepository,
	leaveRepo ports.LeaveRepository,
	locationRepo ports.RiderLocationRepository,
	pub ports.Publisher,
	rooms ports.RoomBroadcaster,
) ports.OrderService {
	return &orderService{
		logger:       logger,
		uow:          uow,
		orderRepo:    orderRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		kidRepo:      kidRepo,
		leaveRepo:    leaveRepo,
		locationRepo: locationRepo,
		pub:          pub,
		rooms:        rooms,
	}
}

// statusRouteSuffix renders the wire status as a routing key segment,
// e.g. "Out for Delivery" -> "out_for_delivery".
func statusRouteSuffix(status string) string {
	return strings.ToLower(strings.ReplaceAll(status, " ", "_"))
}
