package service

import (
	"context"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/domain/user"
	"lunchbox/internal/general/contracts"
	"lunchbox/internal/ports"
)

// AdvanceStatus is the single entry point for every status change, whether it
// arrives over HTTP or a WebSocket frame. It enforces the transition chain and
// the actor's rights, persists the change with its audit event, then publishes
// to the broker and fans out to the order's room.
func (s *orderService) AdvanceStatus(ctx context.Context, in ports.AdvanceStatusInput) (*ports.StatusChangeResult, error) {
	// customers never drive the lifecycle
	if !in.ActorRole.IsRider() && !in.ActorRole.IsAdmin() {
		return nil, ErrForbidden
	}

	var (
		o        *order.Order
		previous order.Status
		rider    *user.User
	)

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orderRepo.GetByID(ctx, in.OrderID)
		if err != nil {
			return err
		}
		previous = o.Status

		// the acting rider for Accepted; later stages keep the bound rider
		actingRider := ""
		if in.ActorRole.IsRider() {
			actingRider = in.ActorID
			// a rider touching a later stage must be the bound one
			if in.Requested != order.StatusAccepted && !o.BoundTo(in.ActorID) {
				return order.ErrRiderMismatch
			}
		} else if o.RiderID != nil {
			actingRider = *o.RiderID
		}

		if err := o.Advance(in.Requested, actingRider, in.EstimatedTime); err != nil {
			return err
		}

		if err := s.orderRepo.UpdateStatus(ctx, o); err != nil {
			return err
		}

		if o.RiderID != nil {
			rider, err = s.userRepo.GetByID(ctx, *o.RiderID)
			if err != nil {
				return err
			}
		}

		ev, err := order.NewEvent(o.ID, order.EventTypeFor(o.Status), map[string]any{
			"from":       previous.String(),
			"to":         o.Status.String(),
			"actor_id":   in.ActorID,
			"actor_role": in.ActorRole.String(),
		})
		if err != nil {
			return err
		}
		return s.eventRepo.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, o.ID)
	s.logger.Info(ctx, "order_status_changed", "Order status advanced", map[string]any{
		"from":       previous.String(),
		"to":         o.Status.String(),
		"actor_id":   in.ActorID,
		"actor_role": in.ActorRole.String(),
	})

	estimated := ""
	if o.EstimatedTime != nil {
		estimated = *o.EstimatedTime
	}

	// broker first, then the live room; both are best effort after commit
	s.publishStatus(ctx, o, previous.String(), estimated)

	wsMsg := contracts.WSStatusUpdate{
		Type:          "status_update",
		OrderID:       o.ID,
		Status:        o.Status.String(),
		Previous:      previous.String(),
		EstimatedTime: estimated,
		Timestamp:     time.Now().UTC(),
	}
	if rider != nil {
		wsMsg.RiderInfo = &contracts.RiderBrief{
			RiderID: rider.ID,
			Name:    rider.Name,
			Phone:   rider.Phone,
			Avatar:  rider.Avatar,
		}
	}
	s.rooms.BroadcastStatus(ctx, o.ID, wsMsg)

	return &ports.StatusChangeResult{
		Order:     o,
		Previous:  previous,
		EventType: order.EventTypeFor(o.Status),
	}, nil
}
