package service

import (
	"context"

	"lunchbox/internal/domain/user"
	"lunchbox/internal/ports"
)

// ListOrders returns the joined order views the actor is allowed to see.
// Customers see their own orders; riders see assigned orders plus unassigned
// Packed ones (minus kids on leave); admins see everything.
func (s *orderService) ListOrders(ctx context.Context, actorID string, actorRole user.Role, date string) ([]ports.OrderView, error) {
	q := ports.OrderListQuery{Date: date}
	switch {
	case actorRole.IsCustomer():
		q.CustomerID = actorID
	case actorRole.IsRider():
		q.RiderID = actorID
	}

	var views []ports.OrderView
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		views, err = s.orderRepo.ListViews(ctx, q)
		return err
	})
	return views, err
}

// GetOrder returns one joined order view. Access control is the caller's
// concern (handlers reuse CanJoinRoom, which encodes the same rules).
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*ports.OrderView, error) {
	var view *ports.OrderView
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		view, err = s.orderRepo.GetViewByID(ctx, orderID)
		return err
	})
	return view, err
}
