package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lunchbox/internal/domain/geo"
	"lunchbox/internal/domain/order"
	"lunchbox/internal/ports"
	orderservice "lunchbox/internal/software/order/service"
)

// minLocationInterval drops position spam from over-eager rider clients.
const minLocationInterval = 500 * time.Millisecond

// handleJoinOrder subscribes the session to an order's room after the order
// service approves the actor.
func (gw *Gateway) handleJoinOrder(ctx context.Context, sess Session, raw json.RawMessage) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.OrderID == "" {
		gw.sendError(sess, "bad_request", "join_order requires order_id")
		return
	}

	ctx = gw.logger.WithOrderID(ctx, req.OrderID)

	if err := gw.orders.CanJoinRoom(ctx, req.OrderID, sess.UserID(), sess.Role()); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			gw.sendError(sess, "not_found", "order not found")
			return
		}
		gw.logger.Info(ctx, "ws_join_denied", "Room join rejected", map[string]any{
			"user_id": sess.UserID(),
			"role":    sess.Role().String(),
		})
		gw.sendError(sess, "forbidden", "not allowed to watch this order")
		return
	}

	gw.registry.Subscribe(req.OrderID, sess)
	gw.logger.Info(ctx, "ws_room_joined", "Session joined order room", map[string]any{
		"user_id": sess.UserID(),
	})
	gw.sendAck(sess, "join_order_ack", req.OrderID, "")
}

// handleUpdateStatus asks the order service to advance the lifecycle. The
// service persists, publishes and fans out; we only ack or report the error.
func (gw *Gateway) handleUpdateStatus(ctx context.Context, sess Session, raw json.RawMessage) {
	var req struct {
		OrderID       string `json:"order_id"`
		Status        string `json:"status"`
		EstimatedTime string `json:"estimated_time"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.OrderID == "" {
		gw.sendError(sess, "bad_request", "update_status requires order_id and status")
		return
	}

	ctx = gw.logger.WithOrderID(ctx, req.OrderID)

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		gw.sendError(sess, "invalid_status", "unknown status value")
		return
	}

	res, err := gw.orders.AdvanceStatus(ctx, ports.AdvanceStatusInput{
		OrderID:       req.OrderID,
		Requested:     status,
		ActorID:       sess.UserID(),
		ActorRole:     sess.Role(),
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			gw.sendError(sess, "not_found", "order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			gw.sendError(sess, "invalid_transition", "status change not allowed from current state")
		case errors.Is(err, order.ErrRiderMismatch):
			gw.sendError(sess, "forbidden", "order is bound to another rider")
		case errors.Is(err, orderservice.ErrForbidden):
			gw.sendError(sess, "forbidden", "role may not change order status")
		default:
			gw.logger.Error(ctx, "ws_update_status_failed", "Status update failed", err, map[string]any{
				"user_id": sess.UserID(),
			})
			gw.sendError(sess, "internal", "failed to update status")
		}
		return
	}

	gw.sendAck(sess, "update_status_ack", req.OrderID, res.Order.Status.String())
}

// handleLocationUpdate records a rider position and lets the order service
// fan it out. Non-riders never get here past the role check.
func (gw *Gateway) handleLocationUpdate(ctx context.Context, sess Session, raw json.RawMessage, lastLocAt *time.Time) {
	if !sess.Role().IsRider() {
		gw.sendError(sess, "forbidden", "only riders send location updates")
		return
	}

	// silently drop bursts; the next sample will carry fresher data anyway
	if now := time.Now(); !lastLocAt.IsZero() && now.Sub(*lastLocAt) < minLocationInterval {
		return
	}

	var req struct {
		OrderID  string   `json:"order_id"`
		Lat      float64  `json:"lat"`
		Lng      float64  `json:"lng"`
		DestLat  *float64 `json:"dest_lat"`
		DestLng  *float64 `json:"dest_lng"`
		Distance string   `json:"distance"`
		ETA      string   `json:"eta"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.OrderID == "" {
		gw.sendError(sess, "bad_request", "location_update requires order_id, lat and lng")
		return
	}

	ctx = gw.logger.WithOrderID(ctx, req.OrderID)

	sample, err := geo.NewLocationSample(req.OrderID, sess.UserID(), req.Lat, req.Lng,
		req.DestLat, req.DestLng, req.Distance, req.ETA, time.Now().UTC())
	if err != nil {
		gw.sendError(sess, "invalid_location", err.Error())
		return
	}

	if _, err := gw.orders.RecordRiderLocation(ctx, sample); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			gw.sendError(sess, "not_found", "order not found")
		case errors.Is(err, order.ErrRiderMismatch):
			gw.sendError(sess, "forbidden", "order is bound to another rider")
		default:
			gw.logger.Error(ctx, "ws_location_update_failed", "Location update failed", err, map[string]any{
				"rider_id": sess.UserID(),
			})
			gw.sendError(sess, "internal", "failed to record location")
		}
		return
	}

	*lastLocAt = time.Now()
	gw.sendAck(sess, "location_update_ack", req.OrderID, "")
}
