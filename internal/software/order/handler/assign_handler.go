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
	"lunchbox/internal/software/order/service"
)

// --- Request DTO (HTTP boundary) ---

type assignRiderRequest struct {
	RiderID string `json:"rider_id"`
}

// ----- Handler: PUT /api/orders/{order_id}/assign -----

func (handler *OrderHTTPHandler) handleAssignRider(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	orderID := r.PathValue("order_id")
	if orderID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "order_id is required", nil)
		return
	}
	ctx = handler.logger.WithOrderID(ctx, orderID)

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req assignRiderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}
	if strings.TrimSpace(req.RiderID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "rider_id is required", nil)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := handler.svc.AssignRider(ctxWithTimeout, orderID, strings.TrimSpace(req.RiderID), claims.Subject, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "order not found", err)
		case errors.Is(err, order.ErrInvalidTransition):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "rider can only be assigned while the order is Packed", err)
		case errors.Is(err, service.ErrForbidden):
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "only admins assign riders", err)
		default:
			handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to assign rider", err)
		}
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"id":       o.ID,
		"rider_id": o.RiderID,
		"status":   o.Status.String(),
	})
}
