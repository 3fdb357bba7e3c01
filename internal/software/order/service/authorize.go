package service

import (
	"context"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
)

// CanJoinRoom decides whether the actor may watch an order's live room:
// the ordering customer, the bound rider, any admin, or any rider while the
// order is still Packed and unassigned (so they can evaluate it).
func (s *orderService) CanJoinRoom(ctx context.Context, orderID, actorID string, actorRole user.Role) error {
	var o *order.Order
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return err
	}

	switch {
	case actorRole.IsAdmin():
		return nil
	case actorRole.IsCustomer():
		if o.CustomerID == actorID {
			return nil
		}
	case actorRole.IsRider():
		if o.BoundTo(actorID) {
			return nil
		}
		if o.RiderID == nil && o.Status == order.StatusPacked {
			return nil
		}
	}
	return ErrForbidden
}
