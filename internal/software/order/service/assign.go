package service

import (
	"context"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
)

// AssignRider binds a rider to a still-Packed order. Admin only; it does not
// advance the status, the rider still accepts the order themselves.
func (s *orderService) AssignRider(ctx context.Context, orderID, riderID, actorID string, actorRole user.Role) (*order.Order, error) {
	if !actorRole.IsAdmin() {
		return nil, ErrForbidden
	}

	var o *order.Order
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		rider, err := s.userRepo.GetByID(ctx, riderID)
		if err != nil {
			return err
		}
		if !rider.IsRider() {
			return ErrForbidden
		}

		o, err = s.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.AssignRider(riderID); err != nil {
			return err
		}
		if err := s.orderRepo.AssignRider(ctx, o.ID, riderID, o.UpdatedAt); err != nil {
			return err
		}

		ev, err := order.NewEvent(o.ID, order.EventRiderAssigned, map[string]any{
			"rider_id": riderID,
			"actor_id": actorID,
		})
		if err != nil {
			return err
		}
		return s.eventRepo.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, orderID)
	s.logger.Info(ctx, "rider_assigned", "Rider assigned to order", map[string]any{
		"rider_id": riderID,
		"actor_id": actorID,
		"at":       time.Now().UTC().Format(time.RFC3339),
	})

	return o, nil
}
