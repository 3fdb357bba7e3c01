package ws

import (
	"context"
	"encoding/json"

	"lunchbox/internal/general/contracts"
	"lunchbox/internal/general/logger"
	"lunchbox/internal/ports"
)

// Fanout pushes order events to everyone in the order's room. Delivery is
// best effort: a failed send drops that session from the room and the rest
// still receive the event.
type Fanout struct {
	registry *Registry
	logger   *logger.Logger
}

var _ ports.RoomBroadcaster = (*Fanout)(nil)

// NewFanout wires a Fanout to the given registry.
func NewFanout(registry *Registry, logger *logger.Logger) *Fanout {
	return &Fanout{registry: registry, logger: logger}
}

// BroadcastStatus sends a status_update to the order's subscribers.
func (f *Fanout) BroadcastStatus(ctx context.Context, orderID string, msg contracts.WSStatusUpdate) {
	f.broadcast(ctx, orderID, "status_update_fanout", msg)
}

// BroadcastLocation sends a location_update to the order's subscribers.
func (f *Fanout) BroadcastLocation(ctx context.Context, orderID string, msg contracts.WSLocationUpdate) {
	f.broadcast(ctx, orderID, "location_update_fanout", msg)
}

func (f *Fanout) broadcast(ctx context.Context, orderID, action string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error(ctx, action, "Failed to marshal room event", err, map[string]any{
			"order_id": orderID,
		})
		return
	}

	subs := f.registry.Subscribers(orderID)
	delivered := 0
	for _, s := range subs {
		if err := s.Send(payload); err != nil {
			// dead subscriber: evict so the room stays clean
			f.registry.Unsubscribe(orderID, s.ID())
			f.logger.Error(ctx, action, "Dropping unreachable room subscriber", err, map[string]any{
				"order_id":   orderID,
				"session_id": s.ID(),
			})
			continue
		}
		delivered++
	}

	if delivered > 0 {
		f.logger.Debug(ctx, action, "Room event delivered", map[string]any{
			"order_id":    orderID,
			"subscribers": len(subs),
			"delivered":   delivered,
		})
	}
}
