package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lunchbox/internal/general/jwt"
	"lunchbox/internal/ports"
	"lunchbox/internal/software/order/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// --- Request DTO (HTTP boundary) ---

type createOrderRequest struct {
	KidID     string `json:"kid_id"`
	OrderDate string `json:"order_date"` // YYYY-MM-DD
}

// ----- Handler: POST /api/orders -----

func (handler *OrderHTTPHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	var req createOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	in := ports.CreateOrderInput{
		CustomerID: strings.TrimSpace(claims.Subject),
		KidID:      strings.TrimSpace(req.KidID),
		OrderDate:  strings.TrimSpace(req.OrderDate),
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := handler.svc.CreateOrder(ctxWithTimeout, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotYourKid):
			handler.httpError(ctxWithTimeout, w, http.StatusForbidden, "kid does not belong to this customer", err)
		case errors.Is(err, service.ErrKidOnLeave):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "kid is on leave for this date", err)
		case errors.Is(err, service.ErrDuplicateOrder):
			handler.httpError(ctxWithTimeout, w, http.StatusConflict, "order already exists for this kid and date", err)
		default:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "database error", err)
				return
			}
			handler.httpError(ctxWithTimeout, w, http.StatusBadRequest, err.Error(), err)
		}
		return
	}
	ctxWithTimeout = handler.logger.WithOrderID(ctxWithTimeout, o.ID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, map[string]any{
		"id":         o.ID,
		"kid_id":     o.KidID,
		"order_date": o.OrderDate,
		"status":     o.Status.String(),
		"created_at": o.CreatedAt,
	})
}
