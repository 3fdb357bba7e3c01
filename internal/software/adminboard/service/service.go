package service

import (
	"context"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// riderOnlineWindow bounds how stale a location ping may be for a rider to
// still count as online on the dashboard.
const riderOnlineWindow = 5 * time.Minute

// adminService implements ports.AdminService: the rider roster and the
// per-day dashboard counters.
type adminService struct {
	logger       *logger.Logger
	uow          ports.UnitOfWork
	userRepo     ports.UserRepository
	orderRepo    ports.OrderRepository
	leaveRepo    ports.LeaveRepository
	locationRepo ports.RiderLocationRepository
}

// NewAdminService creates the admin service with the provided dependencies.
func NewAdminService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	userRepo ports.UserRepository,
	orderRepo ports.OrderRepository,
	leaveRepo ports.LeaveRepository,
	locationRepo ports.RiderLocationRepository,
) ports.AdminService {
	return &adminService{
		logger:       logger,
		uow:          uow,
		userRepo:     userRepo,
		orderRepo:    orderRepo,
		leaveRepo:    leaveRepo,
		locationRepo: locationRepo,
	}
}

// ListRiders returns every registered rider.
func (s *adminService) ListRiders(ctx context.Context) ([]*user.User, error) {
	var riders []*user.User
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		riders, err = s.userRepo.ListByRole(ctx, user.RoleRider)
		return err
	})
	if err != nil {
		return nil, err
	}
	return riders, nil
}

// Overview gathers the dashboard counters for one day.
func (s *adminService) Overview(ctx context.Context, date string) (*ports.AdminOverview, error) {
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	out := &ports.AdminOverview{
		Date:         date,
		StatusCounts: make(map[string]int, len(order.Statuses())),
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		total, err := s.orderRepo.CountCreatedOn(ctx, date)
		if err != nil {
			return err
		}
		out.TotalOrders = total

		for _, status := range order.Statuses() {
			n, err := s.orderRepo.CountByStatusOn(ctx, date, status)
			if err != nil {
				return err
			}
			out.StatusCounts[status.String()] = n
		}

		leaves, err := s.leaveRepo.ListByDate(ctx, date)
		if err != nil {
			return err
		}
		out.KidsOnLeave = len(leaves)

		online, err := s.locationRepo.CountActiveSince(ctx, time.Now().UTC().Add(-riderOnlineWindow))
		if err != nil {
			return err
		}
		out.RidersOnline = online
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
