package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/ports"
	"lunchbox/internal/software/order/service"
)

// --- Request DTO (HTTP boundary) ---

type updateStatusRequest struct {
	Status        string `json:"status"`
	EstimatedTime string `json:"estimated_time"`
}

// ----- Handler: PUT /api/orders/{order_id}/status -----

func (handler *OrderHTTPHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	orderID := r.PathValue("order_id")
	if orderID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "order_id is required", nil)
		return
	}
	ctx = handler.logger.WithOrderID(ctx, orderID)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req updateStatusRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest,
			"status must be one of: Packed, Accepted, Picked Up, Out for Delivery, Delivered", err)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.AdvanceStatus(ctxWithTimeout, ports.AdvanceStatusInput{
		OrderID:       orderID,
		Requested:     status,
		ActorID:       claims.Subject,
		ActorRole:     claims.Role,
		EstimatedTime: strings.TrimSpace(req.EstimatedTime),
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "order not found", err)
		case errors.Is(err, order.ErrInvalidTransition):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "status change not allowed from current state", err)
		case errors.Is(err, order.ErrRiderMismatch):
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "order is bound to another rider", err)
		case errors.Is(err, service.ErrForbidden):
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "role may not change order status", err)
		default:
			handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to update status", err)
		}
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"id":              res.Order.ID,
		"status":          res.Order.Status.String(),
		"previous_status": res.Previous.String(),
		"updated_at":      res.Order.UpdatedAt,
	})
}
