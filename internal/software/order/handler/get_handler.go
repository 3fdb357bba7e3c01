package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lunchbox/internal/domain/order"
	"lunchbox/internal/general/jwt"
	"lunchbox/internal/software/order/service"
)

// ----- Handler: GET /api/orders/{order_id} -----

func (handler *OrderHTTPHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	orderID := r.PathValue("order_id")
	if orderID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "order_id is required", nil)
		return
	}
	ctx = handler.logger.WithOrderID(ctx, orderID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// viewing an order obeys the same rules as joining its room
	if err := handler.svc.CanJoinRoom(ctxWithTimeout, orderID, claims.Subject, claims.Role); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "order not found", err)
		case errors.Is(err, service.ErrForbidden):
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "not allowed to view this order", err)
		default:
			handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to load order", err)
		}
		return
	}

	view, err := handler.svc.GetOrder(ctxWithTimeout, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "order not found", err)
			return
		}
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to load order", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, view)
}
