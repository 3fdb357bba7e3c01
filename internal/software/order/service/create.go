package service

import (
	"context"
	"encoding/json"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/general/contracts"
	"lunchbox/internal/ports"
)

// CreateOrder places a lunch-box order for one kid and one day.
//
// The kid must belong to the ordering customer, must not be on leave for the
// date, and may only have one order per day.
func (s *orderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*order.Order, error) {
	o, err := order.NewOrder(in.CustomerID, in.KidID, in.OrderDate)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context) error {
		k, err := s.kidRepo.GetByID(ctx, in.KidID)
		if err != nil {
			return err
		}
		if k.CustomerID != in.CustomerID {
			return ErrNotYourKid
		}

		onLeave, err := s.leaveRepo.ExistsFor(ctx, in.KidID, in.OrderDate)
		if err != nil {
			return err
		}
		if onLeave {
			return ErrKidOnLeave
		}

		exists, err := s.orderRepo.ExistsFor(ctx, in.KidID, in.OrderDate)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateOrder
		}

		if err := s.orderRepo.CreateOrder(ctx, o); err != nil {
			return err
		}

		ev, err := order.NewEvent(o.ID, order.EventOrderCreated, map[string]any{
			"customer_id": o.CustomerID,
			"kid_id":      o.KidID,
			"order_date":  o.OrderDate,
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
	s.logger.Info(ctx, "order_created", "Order placed", map[string]any{
		"customer_id": o.CustomerID,
		"kid_id":      o.KidID,
		"order_date":  o.OrderDate,
	})

	// broker publish is best effort; the order is already durable
	s.publishStatus(ctx, o, "", "")

	return o, nil
}

// publishStatus emits an OrderStatusMessage on the order topic exchange.
func (s *orderService) publishStatus(ctx context.Context, o *order.Order, previous, estimated string) {
	msg := contracts.OrderStatusMessage{
		OrderID:       o.ID,
		Status:        o.Status.String(),
		Previous:      previous,
		EstimatedTime: estimated,
		Timestamp:     time.Now().UTC(),
		Envelope: contracts.Envelope{
			Producer: "api-service",
			SentAt:   time.Now().UTC(),
		},
	}
	if o.RiderID != nil {
		msg.RiderID = *o.RiderID
	}

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(ctx, "order_status_publish_failed", "Failed to marshal status message", err, nil)
		return
	}

	routingKey := contracts.RouteOrderStatusPrefix + statusRouteSuffix(o.Status.String())
	if err := s.pub.PublishOrderStatus(ctx, body, routingKey); err != nil {
		s.logger.Error(ctx, "order_status_publish_failed", "Failed to publish status message", err, map[string]any{
			"routing_key": routingKey,
		})
	}
}
